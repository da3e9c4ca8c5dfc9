// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков: успешных ответов, ошибок
// и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gridnode/internal/access"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Response описывает стандартную структуру JSON-ответа сервера.
// Поле Status содержит "OK" или "Error", Error заполняется при неуспехе,
// Data при успехе.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OK возвращает успешный Response без данных.
func OK() Response {
	return Response{Status: StatusOK}
}

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человекочитаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// Классы ошибок и их HTTP-статусы.
var statuses = []struct {
	err    error
	status int
}{
	{models.ErrEmptyAddress, http.StatusUnprocessableEntity},
	{models.ErrPasswordMismatch, http.StatusUnprocessableEntity},
	{models.ErrPasswordTooShort, http.StatusUnprocessableEntity},
	{models.ErrMultilineField, http.StatusUnprocessableEntity},
	{models.ErrUnknownNetwork, http.StatusUnprocessableEntity},
	{models.ErrFreePlan, http.StatusUnprocessableEntity},
	{models.ErrQuotaExceeded, http.StatusPaymentRequired},
	{models.ErrUnauthenticated, http.StatusUnauthorized},
	{models.ErrSessionNotFound, http.StatusUnauthorized},
	{models.ErrInvalidCredentials, http.StatusUnauthorized},
	{models.ErrNotVerified, http.StatusForbidden},
	{models.ErrForbidden, http.StatusForbidden},
	{models.ErrPlanNotFound, http.StatusNotFound},
	{models.ErrNotFound, http.StatusNotFound},
	{models.ErrConflict, http.StatusConflict},
	{access.ErrPending, http.StatusServiceUnavailable},
}

// StatusFor возвращает HTTP-статус и текст ответа для ошибки сервиса.
// Неизвестные ошибки скрываются за общим сообщением.
func StatusFor(err error) (int, string) {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status, s.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

// WriteError пишет ответ с ошибкой сервиса.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := StatusFor(err)
	render.Status(r, status)
	render.JSON(w, r, Error(msg))
}
