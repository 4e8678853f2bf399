package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNetwork      ErrorCode = "NETWORK_ERROR"
	ErrCodeRequest      ErrorCode = "REQUEST_ERROR"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// GenericFailure используется, когда сервер не прислал текст ошибки.
const GenericFailure = "запрос завершился ошибкой"

// AppError единая ошибка клиента.
// Status содержит HTTP статус ответа API (0, если ответа не было).
type AppError struct {
	Code    ErrorCode
	Message string
	Status  int
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// Network запрос не дошёл до сервера.
func Network(err error) *AppError {
	return Wrap(err, ErrCodeNetwork, "сервер недоступен")
}

// Request ответ сервера вне диапазона 2xx.
func Request(status int, message string) *AppError {
	code := ErrCodeRequest
	switch status {
	case http.StatusUnauthorized:
		code = ErrCodeUnauthorized
	case http.StatusForbidden:
		code = ErrCodeForbidden
	case http.StatusNotFound:
		code = ErrCodeNotFound
	}
	if message == "" {
		message = fmt.Sprintf("%s (код %d)", GenericFailure, status)
	}
	return &AppError{Code: code, Message: message, Status: status}
}

// Validation клиентская проверка обязательных полей.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// HTTPStatus возвращает статус для локального HTTP интерфейса.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeNetwork:
		return http.StatusBadGateway
	case ErrCodeRequest:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNetwork(err error) bool    { return is(err, ErrCodeNetwork) }
func IsAuth(err error) bool       { return is(err, ErrCodeUnauthorized) }
func IsForbidden(err error) bool  { return is(err, ErrCodeForbidden) }
func IsNotFound(err error) bool   { return is(err, ErrCodeNotFound) }
func IsValidation(err error) bool { return is(err, ErrCodeValidation) }

// IsRequest true для любых ответов сервера вне 2xx, включая 401/403/404.
func IsRequest(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Status != 0
}

// UserMessage возвращает текст, пригодный для показа пользователю.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return GenericFailure
}

var (
	ErrNotAuthenticated = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrSessionExpired   = New(ErrCodeUnauthorized, "сессия истекла, войдите снова")
	ErrForbidden        = New(ErrCodeForbidden, "недостаточно прав")
	ErrNotConfirmed     = New(ErrCodeValidation, "действие не подтверждено")
)
