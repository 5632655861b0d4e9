package lesson

import "sort"

// Link chains lessons in slice order: each lesson points back to the one
// before it and forward to the one after it, the ends point to nil.
// The slice is modified in place and returned.
func Link(lessons []*LessonModel) []*LessonModel {
	last := len(lessons) - 1
	for i, l := range lessons {
		l.PrevLessonID, l.NextLessonID = nil, nil
		if i > 0 {
			prev := lessons[i-1].ID
			l.PrevLessonID = &prev
		}
		if i < last {
			next := lessons[i+1].ID
			l.NextLessonID = &next
		}
	}
	return lessons
}

// SortByOrder stable sorts lessons by orderBy ascending
func SortByOrder(lessons []*LessonModel) {
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].OrderBy < lessons[j].OrderBy
	})
}

// Links sibling pointers of one lesson
type Links struct {
	Prev string
	Next string
}

// Snapshot records the current pointers of lessons by id
func Snapshot(lessons []*LessonModel) map[string]Links {
	result := make(map[string]Links, len(lessons))
	for _, l := range lessons {
		result[l.ID] = linksOf(l)
	}
	return result
}

// Diff lessons whose pointers differ from the snapshot taken before
func Diff(before map[string]Links, after []*LessonModel) []*LessonModel {
	var changed []*LessonModel
	for _, l := range after {
		if old, ok := before[l.ID]; !ok || old != linksOf(l) {
			changed = append(changed, l)
		}
	}
	return changed
}

func linksOf(l *LessonModel) Links {
	var links Links
	if l.PrevLessonID != nil {
		links.Prev = *l.PrevLessonID
	}
	if l.NextLessonID != nil {
		links.Next = *l.NextLessonID
	}
	return links
}
