package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-service/internal/infrastructure/validate"
	"github.com/pot-code/course-service/internal/lesson"
)

type LessonHandler struct {
	lessonUseCase lesson.LessonUseCase
	validator     validate.Validator
}

func NewLessonHandler(LessonUseCase lesson.LessonUseCase, Validator validate.Validator) *LessonHandler {
	handler := &LessonHandler{LessonUseCase, Validator}
	return handler
}

func (lh *LessonHandler) HandleListLessons(c echo.Context) (err error) {
	lessons, err := lh.lessonUseCase.ListLessons(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lessons)
}

// HandleGetLesson project the lesson for the requesting user
func (lh *LessonHandler) HandleGetLesson(c echo.Context) (err error) {
	tgUserID, errs := requestUser(c, lh.validator)
	if errs != nil {
		return respondInvalid(c, errs)
	}

	view, err := lh.lessonUseCase.GetLesson(c.Request().Context(), c.Param("id"), tgUserID)
	if err != nil {
		return err
	}
	if view == nil {
		return respondError(c, http.StatusNotFound, "lesson not found")
	}
	return c.JSON(http.StatusOK, view)
}

func (lh *LessonHandler) HandleCreateLesson(c echo.Context) (err error) {
	input := new(lesson.CreateLessonInput)
	if err = c.Bind(input); err != nil {
		return respondBindError(c, "lesson", err)
	}
	if errs := lh.validator.Struct(input); errs != nil {
		return respondInvalid(c, errs)
	}

	result, err := lh.lessonUseCase.CreateLesson(c.Request().Context(), input)
	switch {
	case errors.Is(err, lesson.ErrCourseNotFound):
		return respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, lesson.ErrDuplicateID):
		return respondError(c, http.StatusConflict, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

func (lh *LessonHandler) HandleUpdateLesson(c echo.Context) (err error) {
	input := new(lesson.UpdateLessonInput)
	if err = c.Bind(input); err != nil {
		return respondBindError(c, "lesson", err)
	}
	if errs := lh.validator.Struct(input); errs != nil {
		return respondInvalid(c, errs)
	}

	result, err := lh.lessonUseCase.UpdateLesson(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	if result == nil {
		return respondError(c, http.StatusNotFound, "lesson not found")
	}
	return c.JSON(http.StatusOK, result)
}

func (lh *LessonHandler) HandleDeleteLesson(c echo.Context) (err error) {
	result, err := lh.lessonUseCase.DeleteLesson(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if result == nil {
		return respondError(c, http.StatusNotFound, "lesson not found")
	}
	return c.JSON(http.StatusOK, result)
}
