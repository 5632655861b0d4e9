package lesson

import (
	"context"
	"errors"
	"time"

	"github.com/pot-code/course-service/internal/infrastructure/driver"
	"github.com/pot-code/course-service/internal/progress"
)

// ErrCourseNotFound a lesson is created under a course that does not exist
var ErrCourseNotFound = errors.New("course not found")

// ErrDuplicateID a generated lesson id collides with a stored one
var ErrDuplicateID = errors.New("lesson id already exists")

// LessonModel ordered unit of content within a course, linked to its siblings
type LessonModel struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CourseID     string        `json:"courseId"`
	OrderBy      int           `json:"orderBy"`
	Content      []ContentItem `json:"content"`
	PrevLessonID *string       `json:"prevLessonId"`
	NextLessonID *string       `json:"nextLessonId"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// CourseInfo parent course columns carried along a lesson
type CourseInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Preview     string    `json:"preview"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LessonAggregate a lesson with its parent course and every lesson of that course
type LessonAggregate struct {
	Lesson   *LessonModel   `json:"lesson"`
	Course   *CourseInfo    `json:"course"`
	Siblings []*LessonModel `json:"siblings"`
}

// LessonIDs ids of the lesson and its siblings, without duplicates
func (la *LessonAggregate) LessonIDs() []string {
	seen := make(map[string]bool, len(la.Siblings)+1)
	ids := make([]string, 0, len(la.Siblings)+1)
	for _, l := range append([]*LessonModel{la.Lesson}, la.Siblings...) {
		if l == nil || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		ids = append(ids, l.ID)
	}
	return ids
}

// LessonView projected lesson as seen by one user
type LessonView struct {
	LessonModel
	progress.Summary
	Course *CourseView `json:"course,omitempty"`
}

// CourseView parent course of a projected lesson, siblings projected too
type CourseView struct {
	CourseInfo
	Lessons []*LessonView `json:"lessons"`
}

// NewLessonInput one lesson of a course creation request
type NewLessonInput struct {
	Name    string        `json:"name" validate:"required,max=128"`
	Content []ContentItem `json:"content"`
	OrderBy int           `json:"orderBy"`
}

// CreateLessonInput request body of create-lesson
type CreateLessonInput struct {
	CourseID string        `json:"courseId" validate:"required"`
	Name     string        `json:"name" validate:"required,max=128"`
	Content  []ContentItem `json:"content"`
	OrderBy  int           `json:"orderBy"`
}

// UpdateLessonInput request body of update-lesson, absent fields are left untouched
type UpdateLessonInput struct {
	Name    *string        `json:"name" validate:"omitempty,min=1,max=128"`
	Content *[]ContentItem `json:"content"`
	OrderBy *int           `json:"orderBy"`
}

// DoneCounter counts recorded attempts of a user per lesson
type DoneCounter interface {
	CountByLessons(ctx context.Context, tgUserID int64, lessonIDs []string) (map[string]int, error)
}

type LessonRepository interface {
	FindByID(ctx context.Context, id string) (*LessonModel, error)
	FindAggregate(ctx context.Context, id string) (*LessonAggregate, error)
	CourseExists(ctx context.Context, courseID string) (bool, error)
	ListAll(ctx context.Context) ([]*LessonModel, error)
	ListByCourse(ctx context.Context, courseID string) ([]*LessonModel, error)
	ListByCourses(ctx context.Context, courseIDs []string) (map[string][]*LessonModel, error)
	Insert(ctx context.Context, lessons ...*LessonModel) error
	Update(ctx context.Context, lesson *LessonModel) error
	UpdateLinks(ctx context.Context, lessons ...*LessonModel) error
	Delete(ctx context.Context, id string) error
	// WithTx returns a repository bound to tx
	WithTx(tx driver.ITransactionalDB) LessonRepository
}

type LessonUseCase interface {
	GetLesson(ctx context.Context, id string, tgUserID int64) (*LessonView, error)
	ListLessons(ctx context.Context) ([]*LessonModel, error)
	CreateLesson(ctx context.Context, input *CreateLessonInput) (*LessonModel, error)
	UpdateLesson(ctx context.Context, id string, input *UpdateLessonInput) (*LessonModel, error)
	DeleteLesson(ctx context.Context, id string) (*LessonModel, error)
}
