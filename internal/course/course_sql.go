package course

import (
	"context"
	"fmt"

	"github.com/pot-code/course-service/internal/infrastructure/driver"
	"github.com/pot-code/course-service/internal/lesson"
)

type CourseSQL struct {
	Conn driver.ITransactionalDB `dep:""`
}

var _ CourseRepository = &CourseSQL{}

func NewCourseRepository(Conn driver.ITransactionalDB) *CourseSQL {
	return &CourseSQL{
		Conn: Conn,
	}
}

// WithTx implement CourseRepository
func (repo *CourseSQL) WithTx(tx driver.ITransactionalDB) CourseRepository {
	return &CourseSQL{Conn: tx}
}

const courseColumns = `id, name, category, description, preview, created_at, updated_at`

func scanCourse(rows driver.ISQLRows) (*lesson.CourseInfo, error) {
	item := new(lesson.CourseInfo)
	if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Description, &item.Preview, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	return item, nil
}

// FindByID returns nil when the course does not exist
func (repo *CourseSQL) FindByID(ctx context.Context, id string) (*lesson.CourseInfo, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+courseColumns+`
FROM course
WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		return scanCourse(rows)
	}
	return nil, rows.Err()
}

func (repo *CourseSQL) ListAll(ctx context.Context) ([]*lesson.CourseInfo, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+courseColumns+`
FROM course
ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	result := []*lesson.CourseInfo{}
	for rows.Next() {
		item, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (repo *CourseSQL) Insert(ctx context.Context, course *lesson.CourseInfo) error {
	conn := repo.Conn
	if _, err := conn.ExecContext(ctx, `
INSERT INTO course (`+courseColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		course.ID, course.Name, course.Category, course.Description, course.Preview, course.CreatedAt, course.UpdatedAt); err != nil {
		if driver.IsUniqueViolation(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}
