package course

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/pot-code/course-service/internal/infrastructure/driver"
	"github.com/pot-code/course-service/internal/infrastructure/driver/drivertest"
	"github.com/pot-code/course-service/internal/lesson"
	"github.com/stretchr/testify/assert"
)

var stamp = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type sequenceGenerator struct {
	n   int
	err error
}

func (s *sequenceGenerator) Generate() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.n++
	return fmt.Sprintf("id%d", s.n), nil
}

func newUseCase(db *drivertest.FakeDB, gen *sequenceGenerator) *CourseUseCaseImpl {
	uc := NewCourseUseCase(db, NewCourseRepository(db), lesson.NewLessonRepository(db), gen)
	uc.now = func() time.Time { return stamp }
	return uc
}

func courseInput(orders ...int) *CreateCourseInput {
	input := &CreateCourseInput{Name: "Go", Category: "dev", Description: "basics", Preview: "go.png"}
	for _, o := range orders {
		input.Lessons = append(input.Lessons, &lesson.NewLessonInput{
			Name:    fmt.Sprintf("order %d", o),
			OrderBy: o,
			Content: []lesson.ContentItem{{ID: "q", OrderBy: 1, IsEstimated: true}},
		})
	}
	return input
}

func TestCreateCourse(t *testing.T) {
	db := drivertest.New(driver.DialectPostgres)
	uc := newUseCase(db, &sequenceGenerator{})

	course, err := uc.CreateCourse(context.Background(), courseInput(3, 1, 2))
	assert.NoError(t, err)

	assert.Equal(t, "id1", course.ID)
	assert.Equal(t, stamp, course.CreatedAt)
	if assert.Len(t, course.Lessons, 3) {
		// id2 has orderBy 3, id3 orderBy 1, id4 orderBy 2
		var ids []string
		for _, l := range course.Lessons {
			ids = append(ids, l.ID)
			assert.Equal(t, "id1", l.CourseID)
			assert.Equal(t, stamp, l.CreatedAt)
			assert.Equal(t, stamp, l.UpdatedAt)
		}
		assert.Equal(t, []string{"id3", "id4", "id2"}, ids)

		assert.Nil(t, course.Lessons[0].PrevLessonID)
		assert.Equal(t, "id4", *course.Lessons[0].NextLessonID)
		assert.Equal(t, "id3", *course.Lessons[1].PrevLessonID)
		assert.Equal(t, "id2", *course.Lessons[1].NextLessonID)
		assert.Equal(t, "id4", *course.Lessons[2].PrevLessonID)
		assert.Nil(t, course.Lessons[2].NextLessonID)
	}

	calls := db.Calls()
	if assert.Len(t, calls, 5) {
		assert.Contains(t, calls[0].Query, "INSERT INTO course")
		assert.Contains(t, calls[1].Query, "INSERT INTO lesson")
		for _, c := range calls[2:] {
			assert.Contains(t, c.Query, "SET prev_lesson_id")
		}
		for _, c := range calls {
			assert.True(t, c.InTx)
		}
	}
	begun, committed, rolledBack := db.TxStats()
	assert.Equal(t, 1, begun)
	assert.Equal(t, 1, committed)
	assert.Equal(t, 0, rolledBack)
}

func TestCreateCourse_SingleAndEmpty(t *testing.T) {
	db := drivertest.New(driver.DialectPostgres)
	uc := newUseCase(db, &sequenceGenerator{})

	course, err := uc.CreateCourse(context.Background(), courseInput(1))
	assert.NoError(t, err)
	if assert.Len(t, course.Lessons, 1) {
		assert.Nil(t, course.Lessons[0].PrevLessonID)
		assert.Nil(t, course.Lessons[0].NextLessonID)
	}

	db = drivertest.New(driver.DialectPostgres)
	uc = newUseCase(db, &sequenceGenerator{})
	course, err = uc.CreateCourse(context.Background(), courseInput())
	assert.NoError(t, err)
	assert.Empty(t, course.Lessons)
	assert.Len(t, db.Calls(), 1)
}

func TestCreateCourse_RollsBack(t *testing.T) {
	tests := []struct {
		name  string
		match string
	}{
		{"lesson insert fails", "INSERT INTO lesson"},
		{"link update fails", "SET prev_lesson_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boom := errors.New("constraint violated")
			db := drivertest.New(driver.DialectPostgres).OnError(tt.match, boom)
			uc := newUseCase(db, &sequenceGenerator{})

			course, err := uc.CreateCourse(context.Background(), courseInput(1, 2))
			assert.True(t, errors.Is(err, boom))
			assert.Nil(t, course)

			_, committed, rolledBack := db.TxStats()
			assert.Equal(t, 0, committed)
			assert.Equal(t, 1, rolledBack)
		})
	}
}

func TestCreateCourse_IDFailure(t *testing.T) {
	db := drivertest.New(driver.DialectPostgres)
	uc := newUseCase(db, &sequenceGenerator{err: errors.New("entropy exhausted")})

	_, err := uc.CreateCourse(context.Background(), courseInput(1))
	assert.Error(t, err)
	assert.Empty(t, db.Calls())
}

func courseRow(id string) []interface{} {
	return []interface{}{id, "course " + id, "dev", "", "", stamp, stamp}
}

func lessonRow(id, courseID string, orderBy int) []interface{} {
	return []interface{}{id, "lesson " + id, courseID, orderBy, "[]", nil, nil, stamp, stamp}
}

func TestListCourses(t *testing.T) {
	db := drivertest.New(driver.DialectPostgres).
		OnQuery("FROM course", courseRow("c1"), courseRow("c2")).
		OnQuery("course_id IN", lessonRow("l1", "c1", 1), lessonRow("l2", "c1", 2))
	uc := newUseCase(db, &sequenceGenerator{})

	courses, err := uc.ListCourses(context.Background())
	assert.NoError(t, err)
	if assert.Len(t, courses, 2) {
		assert.Len(t, courses[0].Lessons, 2)
		assert.NotNil(t, courses[1].Lessons)
		assert.Empty(t, courses[1].Lessons)
	}
}

func TestGetCourse(t *testing.T) {
	db := drivertest.New(driver.DialectPostgres).
		OnQuery("FROM course", courseRow("c1")).
		OnQuery("WHERE course_id = $1", lessonRow("l1", "c1", 1), lessonRow("l2", "c1", 2))
	uc := newUseCase(db, &sequenceGenerator{})

	course, err := uc.GetCourse(context.Background(), "c1")
	assert.NoError(t, err)
	if assert.NotNil(t, course) {
		assert.Equal(t, "course c1", course.Name)
		assert.Len(t, course.Lessons, 2)
	}

	course, err = uc.GetCourse(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, course)
}

func TestCreateCourse_DuplicateID(t *testing.T) {
	tests := []struct {
		name  string
		match string
		want  error
	}{
		{"course id taken", "INSERT INTO course", ErrDuplicateID},
		{"lesson id taken", "INSERT INTO lesson", lesson.ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := drivertest.New(driver.DialectPostgres).OnError(tt.match, &pgconn.PgError{Code: "23505"})
			uc := newUseCase(db, &sequenceGenerator{})

			created, err := uc.CreateCourse(context.Background(), courseInput(1))
			assert.True(t, errors.Is(err, tt.want), err)
			assert.Nil(t, created)

			_, _, rolledBack := db.TxStats()
			assert.Equal(t, 1, rolledBack)
		})
	}
}
