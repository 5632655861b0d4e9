package lesson

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func lessonsOf(ids ...string) []*LessonModel {
	lessons := make([]*LessonModel, len(ids))
	for i, id := range ids {
		lessons[i] = &LessonModel{ID: id, OrderBy: i + 1}
	}
	return lessons
}

func pointers(l *LessonModel) (prev, next string) {
	if l.PrevLessonID != nil {
		prev = *l.PrevLessonID
	}
	if l.NextLessonID != nil {
		next = *l.NextLessonID
	}
	return
}

func TestLink_Example(t *testing.T) {
	lessons := Link(lessonsOf("A", "B", "C"))

	assert.Nil(t, lessons[0].PrevLessonID)
	assert.Equal(t, strPtr("B"), lessons[0].NextLessonID)
	assert.Equal(t, strPtr("A"), lessons[1].PrevLessonID)
	assert.Equal(t, strPtr("C"), lessons[1].NextLessonID)
	assert.Equal(t, strPtr("B"), lessons[2].PrevLessonID)
	assert.Nil(t, lessons[2].NextLessonID)
}

func TestLink_Sizes(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 5} {
		t.Run(fmt.Sprintf("%d lessons", n), func(t *testing.T) {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("l%d", i)
			}
			lessons := Link(lessonsOf(ids...))
			assert.Len(t, lessons, n)

			for i, l := range lessons {
				prev, next := pointers(l)
				if i == 0 {
					assert.Nil(t, l.PrevLessonID)
				} else {
					assert.Equal(t, ids[i-1], prev)
				}
				if i == n-1 {
					assert.Nil(t, l.NextLessonID)
				} else {
					assert.Equal(t, ids[i+1], next)
				}
			}

			// walking forward from the head visits every lesson in order
			if n > 0 {
				byID := make(map[string]*LessonModel, n)
				for _, l := range lessons {
					byID[l.ID] = l
				}
				var walked []string
				for cur := lessons[0]; cur != nil; {
					walked = append(walked, cur.ID)
					if cur.NextLessonID == nil {
						break
					}
					cur = byID[*cur.NextLessonID]
				}
				assert.Equal(t, ids, walked)
			}
		})
	}
}

func TestLink_ClearsStalePointers(t *testing.T) {
	lessons := lessonsOf("A")
	lessons[0].PrevLessonID = strPtr("gone")
	lessons[0].NextLessonID = strPtr("gone")

	Link(lessons)
	assert.Nil(t, lessons[0].PrevLessonID)
	assert.Nil(t, lessons[0].NextLessonID)
}

func TestSortByOrder_Stable(t *testing.T) {
	lessons := []*LessonModel{
		{ID: "c", OrderBy: 3},
		{ID: "a1", OrderBy: 1},
		{ID: "b", OrderBy: 2},
		{ID: "a2", OrderBy: 1},
		{ID: "z", OrderBy: -1},
	}
	SortByOrder(lessons)

	var ids []string
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"z", "a1", "a2", "b", "c"}, ids)
}

func TestDiff(t *testing.T) {
	lessons := Link(lessonsOf("A", "B", "C"))
	before := Snapshot(lessons)

	assert.Empty(t, Diff(before, Link(lessons)))

	// moving C to the front touches every lesson
	lessons[2].OrderBy = 0
	SortByOrder(lessons)
	assert.Len(t, Diff(before, Link(lessons)), 3)

	// removing the middle lesson touches only its neighbours
	lessons = Link(lessonsOf("A", "B", "C"))
	before = Snapshot(lessons)
	remaining := Link([]*LessonModel{lessons[0], lessons[2]})
	changed := Diff(before, remaining)
	if assert.Len(t, changed, 2) {
		assert.Equal(t, "A", changed[0].ID)
		assert.Equal(t, "C", changed[1].ID)
	}

	// lessons missing from the snapshot are reported
	added := append(remaining, &LessonModel{ID: "D"})
	before = Snapshot(remaining)
	changed = Diff(before, Link(added))
	assert.Len(t, changed, 2)
}
