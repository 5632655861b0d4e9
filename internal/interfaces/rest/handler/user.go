package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-service/internal/infrastructure/validate"
)

// HeaderTgUserID carries the requesting telegram user
const HeaderTgUserID = "X-Tg-User-Id"

// requestUser reads the requesting user from the header, falling back to the tgUserId query parameter
func requestUser(c echo.Context, v validate.Validator) (int64, []*validate.FieldError) {
	raw := c.Request().Header.Get(HeaderTgUserID)
	if raw == "" {
		raw = c.QueryParam("tgUserId")
	}
	if errs := v.Empty("tgUserId", raw); errs != nil {
		return 0, errs
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, []*validate.FieldError{validate.NewFieldError("tgUserId", "tgUserId must be a positive integer")}
	}
	return id, nil
}
