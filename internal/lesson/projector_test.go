package lesson

import (
	"testing"

	"github.com/pot-code/course-service/internal/progress"
	"github.com/stretchr/testify/assert"
)

func sampleAggregate() *LessonAggregate {
	first := &LessonModel{
		ID: "l1", CourseID: "c", OrderBy: 1,
		Content: []ContentItem{{ID: "x", OrderBy: 2, IsEstimated: true}, {ID: "y", OrderBy: 1}},
	}
	second := &LessonModel{
		ID: "l2", CourseID: "c", OrderBy: 2,
		Content: []ContentItem{
			{ID: "a", OrderBy: 4, IsEstimated: true},
			{ID: "b", OrderBy: 3, IsEstimated: true},
			{ID: "c", OrderBy: 2, IsEstimated: true},
			{ID: "d", OrderBy: 1, IsEstimated: true},
		},
	}
	third := &LessonModel{ID: "l3", CourseID: "c", OrderBy: 3, Content: []ContentItem{{ID: "z"}}}
	return &LessonAggregate{
		Lesson:   first,
		Course:   &CourseInfo{ID: "c", Name: "Go"},
		Siblings: []*LessonModel{third, first, second},
	}
}

func contentIDs(items []ContentItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestProject(t *testing.T) {
	agg := sampleAggregate()
	view := Project(agg, map[string]int{"l1": 1, "l2": 2})

	assert.Equal(t, "l1", view.ID)
	assert.Equal(t, []string{"y", "x"}, contentIDs(view.Content))
	assert.Equal(t, progress.Summary{
		ContentTotal:            2,
		ContentTotalIsEstimated: 1,
		UserProgress:            progress.UserProgress{ContentTotalDone: 1, ContentTotalDonePercent: 100},
	}, view.Summary)

	if assert.NotNil(t, view.Course) {
		assert.Equal(t, "Go", view.Course.Name)
		lessons := view.Course.Lessons
		if assert.Len(t, lessons, 3) {
			assert.Equal(t, "l1", lessons[0].ID)
			assert.Equal(t, "l2", lessons[1].ID)
			assert.Equal(t, "l3", lessons[2].ID)

			assert.Equal(t, []string{"d", "c", "b", "a"}, contentIDs(lessons[1].Content))
			assert.Equal(t, 4, lessons[1].ContentTotalIsEstimated)
			assert.Equal(t, 2, lessons[1].UserProgress.ContentTotalDone)
			assert.Equal(t, 50, lessons[1].UserProgress.ContentTotalDonePercent)

			assert.Equal(t, 1, lessons[2].ContentTotal)
			assert.Equal(t, 0, lessons[2].ContentTotalIsEstimated)
			assert.Equal(t, 0, lessons[2].UserProgress.ContentTotalDonePercent)
			assert.Nil(t, lessons[2].Course)
		}
	}

	// source data is left in stored order
	assert.Equal(t, []string{"x", "y"}, contentIDs(agg.Lesson.Content))
	assert.Equal(t, "l3", agg.Siblings[0].ID)
}

func TestProject_AllNotEstimated(t *testing.T) {
	agg := &LessonAggregate{
		Lesson: &LessonModel{ID: "l", Content: []ContentItem{{OrderBy: 2}, {OrderBy: 1}}},
		Course: &CourseInfo{ID: "c"},
	}
	view := Project(agg, map[string]int{"l": 3})

	assert.Equal(t, 2, view.ContentTotal)
	assert.Equal(t, 0, view.ContentTotalIsEstimated)
	assert.Equal(t, 3, view.UserProgress.ContentTotalDone)
	assert.Equal(t, 0, view.UserProgress.ContentTotalDonePercent)
	assert.Empty(t, view.Course.Lessons)
}

func TestProject_Missing(t *testing.T) {
	assert.Nil(t, Project(nil, nil))
	assert.Nil(t, Project(&LessonAggregate{Course: &CourseInfo{}}, nil))
	assert.Nil(t, Project(&LessonAggregate{Lesson: &LessonModel{ID: "l"}}, nil))
}

func TestLessonAggregate_LessonIDs(t *testing.T) {
	assert.Equal(t, []string{"l1", "l3", "l2"}, sampleAggregate().LessonIDs())
}
