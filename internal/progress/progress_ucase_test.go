package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// memoryRepository keeps rows keyed by the composite key, like the table's primary key
type memoryRepository struct {
	rows    map[Key]*ProgressModel
	upserts int
	err     error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: make(map[Key]*ProgressModel)}
}

func (m *memoryRepository) FindOne(ctx context.Context, key *Key) (*ProgressModel, error) {
	if m.err != nil {
		return nil, m.err
	}
	if row, ok := m.rows[*key]; ok {
		clone := *row
		return &clone, nil
	}
	return nil, nil
}

func (m *memoryRepository) Upsert(ctx context.Context, post *ProgressModel) (*ProgressModel, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.upserts++
	if row, ok := m.rows[*post.Key()]; ok {
		row.IsCorrect = post.IsCorrect
		row.UpdatedAt = post.UpdatedAt
	} else {
		clone := *post
		m.rows[*post.Key()] = &clone
	}
	clone := *m.rows[*post.Key()]
	return &clone, nil
}

func (m *memoryRepository) CountByLesson(ctx context.Context, tgUserID int64, lessonID string) (int, error) {
	count := 0
	for k := range m.rows {
		if k.TgUserID == tgUserID && k.LessonID == lessonID {
			count++
		}
	}
	return count, nil
}

func (m *memoryRepository) CountByLessons(ctx context.Context, tgUserID int64, lessonIDs []string) (map[string]int, error) {
	result := make(map[string]int)
	for _, id := range lessonIDs {
		result[id], _ = m.CountByLesson(ctx, tgUserID, id)
	}
	return result, nil
}

func TestRecordProgress_UpsertsByCompositeKey(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	uc := NewProgressUseCase(repo)

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return first }
	created, err := uc.RecordProgress(ctx, &RecordProgressInput{TgUserID: 42, ContentID: "c1", LessonID: "l1", IsCorrect: false})
	assert.NoError(t, err)
	assert.False(t, created.IsCorrect)
	assert.Equal(t, first, created.CreatedAt)

	second := first.Add(time.Hour)
	uc.now = func() time.Time { return second }
	updated, err := uc.RecordProgress(ctx, &RecordProgressInput{TgUserID: 42, ContentID: "c1", LessonID: "l1", IsCorrect: true})
	assert.NoError(t, err)
	assert.True(t, updated.IsCorrect)
	assert.Equal(t, first, updated.CreatedAt)
	assert.Equal(t, second, updated.UpdatedAt)

	assert.Len(t, repo.rows, 1)
	stored, err := uc.GetProgress(ctx, &Key{42, "c1", "l1"})
	assert.NoError(t, err)
	assert.True(t, stored.IsCorrect)
}

func TestRecordProgress_DistinctKeysCreateDistinctRows(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	uc := NewProgressUseCase(repo)

	inputs := []*RecordProgressInput{
		{TgUserID: 1, ContentID: "c1", LessonID: "l1"},
		{TgUserID: 1, ContentID: "c2", LessonID: "l1"},
		{TgUserID: 1, ContentID: "c1", LessonID: "l2"},
		{TgUserID: 2, ContentID: "c1", LessonID: "l1"},
	}
	for _, in := range inputs {
		_, err := uc.RecordProgress(ctx, in)
		assert.NoError(t, err)
	}
	assert.Len(t, repo.rows, 4)
}

func TestRecordProgress_RejectsIncompleteKey(t *testing.T) {
	repo := newMemoryRepository()
	uc := NewProgressUseCase(repo)

	tests := []struct {
		name  string
		input *RecordProgressInput
	}{
		{"missing user", &RecordProgressInput{ContentID: "c1", LessonID: "l1"}},
		{"missing content", &RecordProgressInput{TgUserID: 1, LessonID: "l1"}},
		{"missing lesson", &RecordProgressInput{TgUserID: 1, ContentID: "c1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.RecordProgress(context.Background(), tt.input)
			assert.True(t, errors.Is(err, ErrInvalidKey))
		})
	}
	assert.Equal(t, 0, repo.upserts)
}

func TestGetProgress(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	uc := NewProgressUseCase(repo)

	row, err := uc.GetProgress(ctx, &Key{7, "c1", "l1"})
	assert.NoError(t, err)
	assert.Nil(t, row)

	_, err = uc.GetProgress(ctx, &Key{ContentID: "c1"})
	assert.True(t, errors.Is(err, ErrInvalidKey))

	repo.err = errors.New("connection reset")
	_, err = uc.GetProgress(ctx, &Key{7, "c1", "l1"})
	assert.EqualError(t, err, "connection reset")
}
