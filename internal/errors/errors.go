// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход — доменная ошибка (service/auth/storage), на выход:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Принципы:
//   - все отказы по токенам (подпись/формат/истечение/отзыв) отдаются одним
//     сообщением — причина снаружи неразличима;
//   - вход с неверными данными всегда отвечает одним и тем же текстом
//     независимо от внутренней причины;
//   - внутренние ошибки наружу не детализируются, подробности — в логах.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medbook/auth-service/internal/auth"
	"github.com/medbook/auth-service/internal/service"
	"github.com/medbook/auth-service/internal/storage"
)

// Нестандартный код, часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки.
// Field — имя поля для ошибок валидации.
// RequestID — прокидывается из X-Request-Id, если есть.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		// Программная ошибка вызова: не маскируем баг ответом "200 OK".
		return internalError()
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, ErrorResponse{Error: APIError{
			Code:    "validation",
			Message: verr.Message,
			Field:   verr.Field,
		}}
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{Error: APIError{
			Code:    "invalid_credentials",
			Message: "Invalid email or password",
		}}
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
		// Один текст на все отказы по токенам.
		return http.StatusUnauthorized, ErrorResponse{Error: APIError{
			Code:    "invalid_token",
			Message: "invalid token",
		}}
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorResponse{Error: APIError{
			Code:    "unauthenticated",
			Message: "authentication required",
		}}
	case errors.Is(err, auth.ErrPermissionDenied):
		return http.StatusForbidden, ErrorResponse{Error: APIError{
			Code:    "permission_denied",
			Message: "permission denied",
		}}
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: APIError{
			Code:    "not_found",
			Message: "not found",
		}}
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, ErrorResponse{Error: APIError{
			Code:    "canceled",
			Message: "request canceled",
		}}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: APIError{
			Code:    "deadline_exceeded",
			Message: "request timed out",
		}}
	}

	return internalError()
}

func internalError() (int, ErrorResponse) {
	return http.StatusInternalServerError, ErrorResponse{Error: APIError{
		Code:    "internal",
		Message: "internal error",
	}}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
