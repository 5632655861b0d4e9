package lesson

import "github.com/pot-code/course-service/internal/progress"

// Project builds the view of agg's lesson, done holds the requesting user's
// recorded attempts per lesson id. Returns nil when the lesson or its course is missing.
func Project(agg *LessonAggregate, done map[string]int) *LessonView {
	if agg == nil || agg.Lesson == nil || agg.Course == nil {
		return nil
	}

	siblings := make([]*LessonModel, 0, len(agg.Siblings))
	for _, s := range agg.Siblings {
		if s != nil {
			siblings = append(siblings, s)
		}
	}
	SortByOrder(siblings)

	lessons := make([]*LessonView, 0, len(siblings))
	for _, s := range siblings {
		lessons = append(lessons, projectLesson(s, done[s.ID]))
	}

	view := projectLesson(agg.Lesson, done[agg.Lesson.ID])
	view.Course = &CourseView{
		CourseInfo: *agg.Course,
		Lessons:    lessons,
	}
	return view
}

func projectLesson(l *LessonModel, done int) *LessonView {
	view := &LessonView{LessonModel: *l}
	view.Content = SortContent(l.Content)
	total, estimated := CountContent(view.Content)
	view.Summary = progress.Aggregate(total, estimated, done)
	return view
}
