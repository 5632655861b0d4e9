package course

import (
	"context"
	"errors"

	"github.com/pot-code/course-service/internal/infrastructure/driver"
	"github.com/pot-code/course-service/internal/lesson"
)

// ErrDuplicateID a generated course id collides with a stored one
var ErrDuplicateID = errors.New("course id already exists")

// CourseModel course with its lessons ascending by orderBy
type CourseModel struct {
	lesson.CourseInfo
	Lessons []*lesson.LessonModel `json:"lessons"`
}

// CreateCourseInput request body of create-course
type CreateCourseInput struct {
	Name        string                   `json:"name" validate:"required,max=128"`
	Category    string                   `json:"category" validate:"max=64"`
	Description string                   `json:"description"`
	Preview     string                   `json:"preview" validate:"omitempty,max=512"`
	Lessons     []*lesson.NewLessonInput `json:"lessons" validate:"dive,required"`
}

type CourseRepository interface {
	FindByID(ctx context.Context, id string) (*lesson.CourseInfo, error)
	ListAll(ctx context.Context) ([]*lesson.CourseInfo, error)
	Insert(ctx context.Context, course *lesson.CourseInfo) error
	WithTx(tx driver.ITransactionalDB) CourseRepository
}

type CourseUseCase interface {
	CreateCourse(ctx context.Context, input *CreateCourseInput) (*CourseModel, error)
	ListCourses(ctx context.Context) ([]*CourseModel, error)
	GetCourse(ctx context.Context, id string) (*CourseModel, error)
}
