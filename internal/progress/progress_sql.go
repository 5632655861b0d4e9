package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/pot-code/course-service/internal/infrastructure/driver"
)

type ProgressSQL struct {
	Conn driver.ITransactionalDB `dep:""`
}

var _ ProgressRepository = &ProgressSQL{}

func NewProgressRepository(Conn driver.ITransactionalDB) *ProgressSQL {
	return &ProgressSQL{
		Conn: Conn,
	}
}

const progressColumns = `tg_user_id, content_id, lesson_id, is_correct, created_at, updated_at`

func scanProgress(rows driver.ISQLRows) (*ProgressModel, error) {
	item := new(ProgressModel)
	if err := rows.Scan(&item.TgUserID, &item.ContentID, &item.LessonID, &item.IsCorrect, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	return item, nil
}

// FindOne returns nil when no row matches the key
func (repo *ProgressSQL) FindOne(ctx context.Context, key *Key) (*ProgressModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+progressColumns+`
FROM progress
WHERE tg_user_id = $1 AND content_id = $2 AND lesson_id = $3`, key.TgUserID, key.ContentID, key.LessonID)
	if err != nil {
		return nil, fmt.Errorf("find progress: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		return scanProgress(rows)
	}
	return nil, rows.Err()
}

// Upsert inserts the row or overwrites is_correct of the row sharing its key.
// Atomicity comes from the table's composite primary key.
func (repo *ProgressSQL) Upsert(ctx context.Context, post *ProgressModel) (*ProgressModel, error) {
	conn := repo.Conn
	args := []interface{}{post.TgUserID, post.ContentID, post.LessonID, post.IsCorrect, post.CreatedAt, post.UpdatedAt}

	if conn.Dialect() == driver.DialectMySQL {
		if _, err := conn.ExecContext(ctx, `
INSERT INTO progress (`+progressColumns+`)
VALUES ($1, $2, $3, $4, $5, $6)
ON DUPLICATE KEY UPDATE is_correct = VALUES(is_correct), updated_at = VALUES(updated_at)`, args...); err != nil {
			return nil, upsertError(err)
		}
		return repo.FindOne(ctx, post.Key())
	}

	rows, err := conn.QueryContext(ctx, `
INSERT INTO progress (`+progressColumns+`)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (tg_user_id, content_id, lesson_id)
DO UPDATE SET is_correct = EXCLUDED.is_correct, updated_at = EXCLUDED.updated_at
RETURNING `+progressColumns, args...)
	if err != nil {
		return nil, upsertError(err)
	}
	defer rows.Close()

	if rows.Next() {
		return scanProgress(rows)
	}
	if err := rows.Err(); err != nil {
		return nil, upsertError(err)
	}
	return nil, fmt.Errorf("upsert progress: no row returned")
}

func upsertError(err error) error {
	if driver.IsForeignKeyViolation(err) {
		return ErrLessonNotFound
	}
	return fmt.Errorf("upsert progress: %w", err)
}

// CountByLesson counts every recorded attempt of the user in the lesson, correct or not.
// It is the single-lesson form of CountByLessons, which projections use to batch siblings.
func (repo *ProgressSQL) CountByLesson(ctx context.Context, tgUserID int64, lessonID string) (int, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT COUNT(*)
FROM progress
WHERE tg_user_id = $1 AND lesson_id = $2`, tgUserID, lessonID)
	if err != nil {
		return 0, fmt.Errorf("count progress: %w", err)
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("count progress: %w", err)
		}
	}
	return int(count), rows.Err()
}

// CountByLessons is CountByLesson for many lessons in one grouped query.
// Lessons without rows are reported as 0.
func (repo *ProgressSQL) CountByLessons(ctx context.Context, tgUserID int64, lessonIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, 0, len(lessonIDs))
	args := make([]interface{}, 0, len(lessonIDs)+1)
	args = append(args, tgUserID)
	for i, id := range lessonIDs {
		result[id] = 0
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, id)
	}

	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT lesson_id, COUNT(*)
FROM progress
WHERE tg_user_id = $1 AND lesson_id IN (`+strings.Join(placeholders, ", ")+`)
GROUP BY lesson_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("count progress by lessons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			lessonID string
			count    int64
		)
		if err := rows.Scan(&lessonID, &count); err != nil {
			return nil, fmt.Errorf("count progress by lessons: %w", err)
		}
		result[lessonID] = int(count)
	}
	return result, rows.Err()
}
