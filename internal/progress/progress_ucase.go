package progress

import (
	"context"
	"time"

	"github.com/pot-code/course-service/internal/infrastructure/logging"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// ProgressUseCaseImpl ...
type ProgressUseCaseImpl struct {
	ProgressRepository ProgressRepository
	now                func() time.Time
}

var _ ProgressUseCase = &ProgressUseCaseImpl{}

// NewProgressUseCase ...
func NewProgressUseCase(
	ProgressRepository ProgressRepository,
) *ProgressUseCaseImpl {
	return &ProgressUseCaseImpl{ProgressRepository, time.Now}
}

// GetProgress fetch the row of one (user, content, lesson) triple, nil when absent
func (pu *ProgressUseCaseImpl) GetProgress(ctx context.Context, key *Key) (*ProgressModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.GetProgress", "service")
	defer apmSpan.End()

	if !key.Valid() {
		return nil, ErrInvalidKey
	}
	return pu.ProgressRepository.FindOne(ctx, key)
}

// RecordProgress upsert the latest result of a user for one content item within one lesson
func (pu *ProgressUseCaseImpl) RecordProgress(ctx context.Context, input *RecordProgressInput) (*ProgressModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.RecordProgress", "service")
	defer apmSpan.End()

	if !input.Key().Valid() {
		return nil, ErrInvalidKey
	}

	now := pu.now().UTC()
	result, err := pu.ProgressRepository.Upsert(ctx, &ProgressModel{
		TgUserID:  input.TgUserID,
		ContentID: input.ContentID,
		LessonID:  input.LessonID,
		IsCorrect: input.IsCorrect,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	logging.ExtractLoggerFromContext(ctx).Debug("progress recorded",
		zap.Int64("progress.tg_user_id", result.TgUserID),
		zap.String("progress.lesson_id", result.LessonID),
		zap.String("progress.content_id", result.ContentID),
		zap.Bool("progress.is_correct", result.IsCorrect),
	)
	return result, nil
}
