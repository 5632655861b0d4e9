package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-service/internal/infrastructure/validate"
	"github.com/pot-code/course-service/internal/progress"
)

type ProgressHandler struct {
	progressUseCase progress.ProgressUseCase
	validator       validate.Validator
}

func NewProgressHandler(ProgressUseCase progress.ProgressUseCase, Validator validate.Validator) *ProgressHandler {
	handler := &ProgressHandler{ProgressUseCase, Validator}
	return handler
}

// HandleGetProgress GET /progress?tgUserId=&contentId=&lessonId=
func (ph *ProgressHandler) HandleGetProgress(c echo.Context) (err error) {
	key := new(progress.Key)
	if err = c.Bind(key); err != nil {
		return respondBindError(c, "progress key", err)
	}
	if key.TgUserID == 0 {
		if id, errs := requestUser(c, ph.validator); errs == nil {
			key.TgUserID = id
		}
	}
	if errs := ph.validator.Struct(key); errs != nil {
		return respondInvalid(c, errs)
	}

	result, err := ph.progressUseCase.GetProgress(c.Request().Context(), key)
	if err != nil {
		return err
	}
	if result == nil {
		return respondError(c, http.StatusNotFound, "no progress recorded")
	}
	return c.JSON(http.StatusOK, result)
}

// HandleRecordProgress PUT /progress
func (ph *ProgressHandler) HandleRecordProgress(c echo.Context) (err error) {
	input := new(progress.RecordProgressInput)
	if err = c.Bind(input); err != nil {
		return respondBindError(c, "progress", err)
	}
	if input.TgUserID == 0 {
		if id, errs := requestUser(c, ph.validator); errs == nil {
			input.TgUserID = id
		}
	}
	if errs := ph.validator.Struct(input); errs != nil {
		return respondInvalid(c, errs)
	}

	result, err := ph.progressUseCase.RecordProgress(c.Request().Context(), input)
	switch {
	case errors.Is(err, progress.ErrLessonNotFound):
		return respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, progress.ErrInvalidKey):
		return respondError(c, http.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, result)
}
