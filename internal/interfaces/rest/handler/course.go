package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-service/internal/course"
	"github.com/pot-code/course-service/internal/infrastructure/validate"
	"github.com/pot-code/course-service/internal/lesson"
)

type CourseHandler struct {
	courseUseCase course.CourseUseCase
	validator     validate.Validator
}

func NewCourseHandler(CourseUseCase course.CourseUseCase, Validator validate.Validator) *CourseHandler {
	handler := &CourseHandler{CourseUseCase, Validator}
	return handler
}

func (ch *CourseHandler) HandleListCourses(c echo.Context) (err error) {
	courses, err := ch.courseUseCase.ListCourses(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, courses)
}

func (ch *CourseHandler) HandleGetCourse(c echo.Context) (err error) {
	result, err := ch.courseUseCase.GetCourse(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if result == nil {
		return respondError(c, http.StatusNotFound, "course not found")
	}
	return c.JSON(http.StatusOK, result)
}

// HandleCreateCourse create the course together with its lessons
func (ch *CourseHandler) HandleCreateCourse(c echo.Context) (err error) {
	input := new(course.CreateCourseInput)
	if err = c.Bind(input); err != nil {
		return respondBindError(c, "course", err)
	}
	if errs := ch.validator.Struct(input); errs != nil {
		return respondInvalid(c, errs)
	}

	result, err := ch.courseUseCase.CreateCourse(c.Request().Context(), input)
	if errors.Is(err, course.ErrDuplicateID) || errors.Is(err, lesson.ErrDuplicateID) {
		return respondError(c, http.StatusConflict, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}
