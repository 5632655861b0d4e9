package lesson

import (
	"context"
	"time"

	"github.com/pot-code/course-service/internal/infrastructure/driver"
	"github.com/pot-code/course-service/internal/infrastructure/logging"
	"github.com/pot-code/course-service/internal/infrastructure/uuid"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// LessonUseCaseImpl ...
type LessonUseCaseImpl struct {
	Conn             driver.ITransactionalDB
	LessonRepository LessonRepository
	DoneCounter      DoneCounter
	Cache            AggregateCache
	UUIDGenerator    uuid.Generator
	now              func() time.Time
}

var _ LessonUseCase = &LessonUseCaseImpl{}

// NewLessonUseCase ...
func NewLessonUseCase(
	Conn driver.ITransactionalDB,
	LessonRepository LessonRepository,
	DoneCounter DoneCounter,
	Cache AggregateCache,
	UUIDGenerator uuid.Generator,
) *LessonUseCaseImpl {
	if Cache == nil {
		Cache = NopAggregateCache{}
	}
	return &LessonUseCaseImpl{Conn, LessonRepository, DoneCounter, Cache, UUIDGenerator, time.Now}
}

// GetLesson project the lesson for the user, nil when the lesson does not exist
func (lu *LessonUseCaseImpl) GetLesson(ctx context.Context, id string, tgUserID int64) (*LessonView, error) {
	apmSpan, _ := apm.StartSpan(ctx, "LessonUseCaseImpl.GetLesson", "service")
	defer apmSpan.End()

	agg, err := lu.loadAggregate(ctx, id)
	if err != nil || agg == nil {
		return nil, err
	}

	done, err := lu.DoneCounter.CountByLessons(ctx, tgUserID, agg.LessonIDs())
	if err != nil {
		return nil, err
	}
	return Project(agg, done), nil
}

func (lu *LessonUseCaseImpl) loadAggregate(ctx context.Context, id string) (*LessonAggregate, error) {
	logger := logging.ExtractLoggerFromContext(ctx)

	cached, version, cacheErr := lu.Cache.Get(ctx, id)
	if cacheErr != nil {
		logger.Warn("lesson cache unavailable", zap.Error(cacheErr), zap.String("lesson.id", id))
	} else if cached != nil {
		return cached, nil
	}

	// the version is read before the store so a concurrent mutation always outdates it
	agg, err := lu.LessonRepository.FindAggregate(ctx, id)
	if err != nil || agg == nil || cacheErr != nil {
		return agg, err
	}
	if err := lu.Cache.Set(ctx, version, agg); err != nil {
		logger.Warn("failed to cache lesson", zap.Error(err), zap.String("lesson.id", id))
	}
	return agg, nil
}

// ListLessons every lesson of every course
func (lu *LessonUseCaseImpl) ListLessons(ctx context.Context) ([]*LessonModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "LessonUseCaseImpl.ListLessons", "service")
	defer apmSpan.End()

	return lu.LessonRepository.ListAll(ctx)
}

// CreateLesson add a lesson to an existing course and relink the course's lessons
func (lu *LessonUseCaseImpl) CreateLesson(ctx context.Context, input *CreateLessonInput) (*LessonModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "LessonUseCaseImpl.CreateLesson", "service")
	defer apmSpan.End()

	id, err := lu.UUIDGenerator.Generate()
	if err != nil {
		return nil, err
	}
	now := lu.now().UTC()
	lesson := &LessonModel{
		ID:        id,
		Name:      input.Name,
		CourseID:  input.CourseID,
		OrderBy:   input.OrderBy,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if lesson.Content == nil {
		lesson.Content = []ContentItem{}
	}

	var siblings []*LessonModel
	err = driver.RunInTx(ctx, lu.Conn, nil, func(tx driver.ITransactionalDB) error {
		repo := lu.LessonRepository.WithTx(tx)

		exists, err := repo.CourseExists(ctx, input.CourseID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCourseNotFound
		}
		if err := repo.Insert(ctx, lesson); err != nil {
			return err
		}
		siblings, err = relink(ctx, repo, input.CourseID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	lu.invalidate(ctx, siblings)
	return pick(siblings, lesson), nil
}

// UpdateLesson apply a partial update, nil when the lesson does not exist.
// Changing orderBy relinks the course's lessons.
func (lu *LessonUseCaseImpl) UpdateLesson(ctx context.Context, id string, input *UpdateLessonInput) (*LessonModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "LessonUseCaseImpl.UpdateLesson", "service")
	defer apmSpan.End()

	var (
		lesson   *LessonModel
		siblings []*LessonModel
	)
	now := lu.now().UTC()
	err := driver.RunInTx(ctx, lu.Conn, nil, func(tx driver.ITransactionalDB) error {
		repo := lu.LessonRepository.WithTx(tx)

		var err error
		lesson, err = repo.FindByID(ctx, id)
		if err != nil || lesson == nil {
			return err
		}

		reorder := input.OrderBy != nil && *input.OrderBy != lesson.OrderBy
		if input.Name != nil {
			lesson.Name = *input.Name
		}
		if input.Content != nil {
			lesson.Content = *input.Content
		}
		if input.OrderBy != nil {
			lesson.OrderBy = *input.OrderBy
		}
		lesson.UpdatedAt = now
		if err := repo.Update(ctx, lesson); err != nil {
			return err
		}

		if reorder {
			siblings, err = relink(ctx, repo, lesson.CourseID, now)
		} else {
			siblings, err = repo.ListByCourse(ctx, lesson.CourseID)
		}
		return err
	})
	if err != nil || lesson == nil {
		return nil, err
	}

	lu.invalidate(ctx, siblings)
	return pick(siblings, lesson), nil
}

// DeleteLesson remove the lesson and relink the remaining ones, returns the
// removed lesson or nil when it does not exist
func (lu *LessonUseCaseImpl) DeleteLesson(ctx context.Context, id string) (*LessonModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "LessonUseCaseImpl.DeleteLesson", "service")
	defer apmSpan.End()

	var (
		lesson   *LessonModel
		siblings []*LessonModel
	)
	now := lu.now().UTC()
	err := driver.RunInTx(ctx, lu.Conn, nil, func(tx driver.ITransactionalDB) error {
		repo := lu.LessonRepository.WithTx(tx)

		var err error
		lesson, err = repo.FindByID(ctx, id)
		if err != nil || lesson == nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		siblings, err = relink(ctx, repo, lesson.CourseID, now)
		return err
	})
	if err != nil || lesson == nil {
		return nil, err
	}

	lu.invalidate(ctx, append(siblings, lesson))
	return lesson, nil
}

// relink chains the course's lessons by orderBy and persists the pointers that changed
func relink(ctx context.Context, repo LessonRepository, courseID string, now time.Time) ([]*LessonModel, error) {
	siblings, err := repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	before := Snapshot(siblings)
	SortByOrder(siblings)
	changed := Diff(before, Link(siblings))
	for _, l := range changed {
		l.UpdatedAt = now
	}
	if err := repo.UpdateLinks(ctx, changed...); err != nil {
		return nil, err
	}

	logging.ExtractLoggerFromContext(ctx).Debug("course lessons relinked",
		zap.String("course.id", courseID),
		zap.Int("lesson.total", len(siblings)),
		zap.Int("lesson.changed", len(changed)),
	)
	return siblings, nil
}

func (lu *LessonUseCaseImpl) invalidate(ctx context.Context, lessons []*LessonModel) {
	ids := make([]string, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	if err := lu.Cache.Invalidate(ctx, ids...); err != nil {
		logging.ExtractLoggerFromContext(ctx).Warn("failed to invalidate lesson cache", zap.Error(err), zap.Strings("lesson.ids", ids))
	}
}

// pick the freshly linked copy of lesson among siblings
func pick(siblings []*LessonModel, lesson *LessonModel) *LessonModel {
	for _, s := range siblings {
		if s.ID == lesson.ID {
			return s
		}
	}
	return lesson
}
