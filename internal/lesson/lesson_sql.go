package lesson

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pot-code/course-service/internal/infrastructure/driver"
)

type LessonSQL struct {
	Conn driver.ITransactionalDB `dep:""`
}

var _ LessonRepository = &LessonSQL{}

func NewLessonRepository(Conn driver.ITransactionalDB) *LessonSQL {
	return &LessonSQL{
		Conn: Conn,
	}
}

// WithTx implement LessonRepository
func (repo *LessonSQL) WithTx(tx driver.ITransactionalDB) LessonRepository {
	return &LessonSQL{Conn: tx}
}

const lessonColumns = `id, name, course_id, order_by, content, prev_lesson_id, next_lesson_id, created_at, updated_at`

const lessonOrder = `ORDER BY order_by, created_at, id`

func scanLesson(rows driver.ISQLRows) (*LessonModel, error) {
	var (
		item       = new(LessonModel)
		content    []byte
		prev, next sql.NullString
	)
	if err := rows.Scan(&item.ID, &item.Name, &item.CourseID, &item.OrderBy, &content, &prev, &next, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	items, err := decodeContent(content)
	if err != nil {
		return nil, err
	}
	item.Content = items
	if prev.Valid {
		item.PrevLessonID = &prev.String
	}
	if next.Valid {
		item.NextLessonID = &next.String
	}
	return item, nil
}

func scanLessons(rows driver.ISQLRows) ([]*LessonModel, error) {
	result := []*LessonModel{}
	for rows.Next() {
		item, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func placeholders(start, n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(list, ", ")
}

// FindByID returns nil when the lesson does not exist
func (repo *LessonSQL) FindByID(ctx context.Context, id string) (*LessonModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+lessonColumns+`
FROM lesson
WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find lesson: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		return scanLesson(rows)
	}
	return nil, rows.Err()
}

// FindAggregate loads the lesson, its course and the course's lessons in one read-only
// transaction. Returns nil when the lesson or its course does not exist.
func (repo *LessonSQL) FindAggregate(ctx context.Context, id string) (*LessonAggregate, error) {
	var agg *LessonAggregate
	err := driver.RunInTx(ctx, repo.Conn, &driver.TxOptions{AccessMode: driver.AccessReadOnly}, func(tx driver.ITransactionalDB) error {
		txRepo := &LessonSQL{Conn: tx}

		lesson, err := txRepo.FindByID(ctx, id)
		if err != nil || lesson == nil {
			return err
		}
		course, err := txRepo.findCourse(ctx, lesson.CourseID)
		if err != nil || course == nil {
			return err
		}
		siblings, err := txRepo.ListByCourse(ctx, course.ID)
		if err != nil {
			return err
		}
		agg = &LessonAggregate{Lesson: lesson, Course: course, Siblings: siblings}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}

func (repo *LessonSQL) findCourse(ctx context.Context, id string) (*CourseInfo, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT id, name, category, description, preview, created_at, updated_at
FROM course
WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		item := new(CourseInfo)
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Description, &item.Preview, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("find course: %w", err)
		}
		return item, nil
	}
	return nil, rows.Err()
}

// CourseExists reports whether the course row exists
func (repo *LessonSQL) CourseExists(ctx context.Context, courseID string) (bool, error) {
	course, err := repo.findCourse(ctx, courseID)
	return course != nil, err
}

func (repo *LessonSQL) ListAll(ctx context.Context) ([]*LessonModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+lessonColumns+`
FROM lesson
ORDER BY course_id, order_by, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	return scanLessons(rows)
}

// ListByCourse lessons of the course ascending by orderBy
func (repo *LessonSQL) ListByCourse(ctx context.Context, courseID string) ([]*LessonModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+lessonColumns+`
FROM lesson
WHERE course_id = $1
`+lessonOrder, courseID)
	if err != nil {
		return nil, fmt.Errorf("list course lessons: %w", err)
	}
	defer rows.Close()

	return scanLessons(rows)
}

// ListByCourses groups lessons by course id, every requested course gets an entry
func (repo *LessonSQL) ListByCourses(ctx context.Context, courseIDs []string) (map[string][]*LessonModel, error) {
	result := make(map[string][]*LessonModel, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}
	args := make([]interface{}, len(courseIDs))
	for i, id := range courseIDs {
		result[id] = []*LessonModel{}
		args[i] = id
	}

	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+lessonColumns+`
FROM lesson
WHERE course_id IN (`+placeholders(1, len(courseIDs))+`)
`+lessonOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("list course lessons: %w", err)
	}
	defer rows.Close()

	lessons, err := scanLessons(rows)
	if err != nil {
		return nil, err
	}
	for _, l := range lessons {
		result[l.CourseID] = append(result[l.CourseID], l)
	}
	return result, nil
}

// Insert writes lessons in one statement
func (repo *LessonSQL) Insert(ctx context.Context, lessons ...*LessonModel) error {
	if len(lessons) == 0 {
		return nil
	}

	const width = 9
	values := make([]string, 0, len(lessons))
	args := make([]interface{}, 0, len(lessons)*width)
	for i, l := range lessons {
		content, err := encodeContent(l.Content)
		if err != nil {
			return err
		}
		values = append(values, "("+placeholders(i*width+1, width)+")")
		args = append(args, l.ID, l.Name, l.CourseID, l.OrderBy, content, l.PrevLessonID, l.NextLessonID, l.CreatedAt, l.UpdatedAt)
	}

	conn := repo.Conn
	if _, err := conn.ExecContext(ctx, `
INSERT INTO lesson (`+lessonColumns+`)
VALUES `+strings.Join(values, ", "), args...); err != nil {
		switch {
		case driver.IsForeignKeyViolation(err):
			return ErrCourseNotFound
		case driver.IsUniqueViolation(err):
			return ErrDuplicateID
		}
		return fmt.Errorf("insert lessons: %w", err)
	}
	return nil
}

// Update persists name, content and orderBy of the lesson
func (repo *LessonSQL) Update(ctx context.Context, lesson *LessonModel) error {
	content, err := encodeContent(lesson.Content)
	if err != nil {
		return err
	}

	conn := repo.Conn
	if _, err := conn.ExecContext(ctx, `
UPDATE lesson
SET name = $1, content = $2, order_by = $3, updated_at = $4
WHERE id = $5`, lesson.Name, content, lesson.OrderBy, lesson.UpdatedAt, lesson.ID); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

// UpdateLinks persists the sibling pointers, one statement per lesson
func (repo *LessonSQL) UpdateLinks(ctx context.Context, lessons ...*LessonModel) error {
	conn := repo.Conn
	for _, l := range lessons {
		if _, err := conn.ExecContext(ctx, `
UPDATE lesson
SET prev_lesson_id = $1, next_lesson_id = $2, updated_at = $3
WHERE id = $4`, l.PrevLessonID, l.NextLessonID, l.UpdatedAt, l.ID); err != nil {
			return fmt.Errorf("link lesson %s: %w", l.ID, err)
		}
	}
	return nil
}

func (repo *LessonSQL) Delete(ctx context.Context, id string) error {
	conn := repo.Conn
	if _, err := conn.ExecContext(ctx, `
DELETE FROM lesson
WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}
