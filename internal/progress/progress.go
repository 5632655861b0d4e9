package progress

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidKey the composite key misses one of its parts
var ErrInvalidKey = errors.New("tgUserId, contentId and lessonId are required")

// ErrLessonNotFound progress is recorded against a lesson that does not exist
var ErrLessonNotFound = errors.New("lesson not found")

// Key identifies one progress row: one user, one content item, one lesson
type Key struct {
	TgUserID  int64  `json:"tgUserId" query:"tgUserId" validate:"required"`
	ContentID string `json:"contentId" query:"contentId" validate:"required"`
	LessonID  string `json:"lessonId" query:"lessonId" validate:"required"`
}

// Valid reports whether every part of the key is set
func (k *Key) Valid() bool {
	return k != nil && k.TgUserID != 0 && k.ContentID != "" && k.LessonID != ""
}

// ProgressModel latest recorded result of a user for one content item within one lesson
type ProgressModel struct {
	TgUserID  int64     `json:"tgUserId"`
	ContentID string    `json:"contentId"`
	LessonID  string    `json:"lessonId"`
	IsCorrect bool      `json:"isCorrect"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key composite key of the row
func (pm *ProgressModel) Key() *Key {
	return &Key{pm.TgUserID, pm.ContentID, pm.LessonID}
}

// RecordProgressInput request body of record-progress
type RecordProgressInput struct {
	TgUserID  int64  `json:"tgUserId" validate:"required"`
	ContentID string `json:"contentId" validate:"required"`
	LessonID  string `json:"lessonId" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// Key composite key the input targets
func (in *RecordProgressInput) Key() *Key {
	return &Key{in.TgUserID, in.ContentID, in.LessonID}
}

type ProgressRepository interface {
	FindOne(ctx context.Context, key *Key) (*ProgressModel, error)
	Upsert(ctx context.Context, post *ProgressModel) (*ProgressModel, error)
	CountByLesson(ctx context.Context, tgUserID int64, lessonID string) (int, error)
	CountByLessons(ctx context.Context, tgUserID int64, lessonIDs []string) (map[string]int, error)
}

type ProgressUseCase interface {
	GetProgress(ctx context.Context, key *Key) (*ProgressModel, error)
	RecordProgress(ctx context.Context, input *RecordProgressInput) (*ProgressModel, error)
}
