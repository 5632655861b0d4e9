package course

import (
	"context"
	"time"

	"github.com/pot-code/course-service/internal/infrastructure/driver"
	"github.com/pot-code/course-service/internal/infrastructure/logging"
	"github.com/pot-code/course-service/internal/infrastructure/uuid"
	"github.com/pot-code/course-service/internal/lesson"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// CourseUseCaseImpl ...
type CourseUseCaseImpl struct {
	Conn             driver.ITransactionalDB
	CourseRepository CourseRepository
	LessonRepository lesson.LessonRepository
	UUIDGenerator    uuid.Generator
	now              func() time.Time
}

var _ CourseUseCase = &CourseUseCaseImpl{}

// NewCourseUseCase ...
func NewCourseUseCase(
	Conn driver.ITransactionalDB,
	CourseRepository CourseRepository,
	LessonRepository lesson.LessonRepository,
	UUIDGenerator uuid.Generator,
) *CourseUseCaseImpl {
	return &CourseUseCaseImpl{Conn, CourseRepository, LessonRepository, UUIDGenerator, time.Now}
}

// CreateCourse insert the course and its lessons, then chain the lessons by orderBy.
// Everything happens in one transaction.
func (cu *CourseUseCaseImpl) CreateCourse(ctx context.Context, input *CreateCourseInput) (*CourseModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.CreateCourse", "service")
	defer apmSpan.End()

	now := cu.now().UTC()
	courseID, err := cu.UUIDGenerator.Generate()
	if err != nil {
		return nil, err
	}
	info := &lesson.CourseInfo{
		ID:          courseID,
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		Preview:     input.Preview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	lessons := make([]*lesson.LessonModel, 0, len(input.Lessons))
	for _, li := range input.Lessons {
		id, err := cu.UUIDGenerator.Generate()
		if err != nil {
			return nil, err
		}
		content := li.Content
		if content == nil {
			content = []lesson.ContentItem{}
		}
		lessons = append(lessons, &lesson.LessonModel{
			ID:        id,
			Name:      li.Name,
			CourseID:  courseID,
			OrderBy:   li.OrderBy,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	err = driver.RunInTx(ctx, cu.Conn, nil, func(tx driver.ITransactionalDB) error {
		lessonRepo := cu.LessonRepository.WithTx(tx)
		if err := cu.CourseRepository.WithTx(tx).Insert(ctx, info); err != nil {
			return err
		}
		if err := lessonRepo.Insert(ctx, lessons...); err != nil {
			return err
		}
		lesson.SortByOrder(lessons)
		return lessonRepo.UpdateLinks(ctx, lesson.Link(lessons)...)
	})
	if err != nil {
		return nil, err
	}

	logging.ExtractLoggerFromContext(ctx).Debug("course created",
		zap.String("course.id", courseID),
		zap.Int("lesson.total", len(lessons)),
	)
	return &CourseModel{CourseInfo: *info, Lessons: lessons}, nil
}

// ListCourses every course with its lessons
func (cu *CourseUseCaseImpl) ListCourses(ctx context.Context) ([]*CourseModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.ListCourses", "service")
	defer apmSpan.End()

	courses, err := cu.CourseRepository.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	grouped, err := cu.LessonRepository.ListByCourses(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]*CourseModel, 0, len(courses))
	for _, c := range courses {
		lessons := grouped[c.ID]
		if lessons == nil {
			lessons = []*lesson.LessonModel{}
		}
		result = append(result, &CourseModel{CourseInfo: *c, Lessons: lessons})
	}
	return result, nil
}

// GetCourse one course with its lessons, nil when the course does not exist
func (cu *CourseUseCaseImpl) GetCourse(ctx context.Context, id string) (*CourseModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.GetCourse", "service")
	defer apmSpan.End()

	info, err := cu.CourseRepository.FindByID(ctx, id)
	if err != nil || info == nil {
		return nil, err
	}
	lessons, err := cu.LessonRepository.ListByCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CourseModel{CourseInfo: *info, Lessons: lessons}, nil
}
