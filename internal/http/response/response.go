package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-nexus/internal/view"
)

type Response struct {
	Success    bool             `json:"success"`
	Data       interface{}      `json:"data,omitempty"`
	Navigation *view.Navigation `json:"navigation,omitempty"`
	Error      *ErrorInfo       `json:"error,omitempty"`
}

// ErrorInfo Alert выставляется для неудачи разрушительного действия,
// которую интерфейс показывает блокирующим сообщением.
type ErrorInfo struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Alert    bool   `json:"alert,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Navigate успешная отправка формы с переходом.
func Navigate(c *gin.Context, data interface{}, nav *view.Navigation) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       data,
		Navigation: nav,
	})
}

// Status код ответа для ошибки.
func Status(err error) int {
	if errors.Is(err, apperror.ErrNotConfirmed) {
		return http.StatusPreconditionRequired
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func Error(c *gin.Context, err error) {
	info := &ErrorInfo{
		Code:    string(apperror.ErrCodeInternal),
		Message: apperror.UserMessage(err),
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		info.Code = string(appErr.Code)
	}
	if alert, ok := view.AsAlert(err); ok {
		info.Alert = true
		info.Message = alert.Error()
	}

	c.JSON(Status(err), Response{
		Success: false,
		Error:   info,
	})
}

func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, apperror.ErrCodeValidation, message, "")
}

func NotFound(c *gin.Context, message string) {
	fail(c, http.StatusNotFound, apperror.ErrCodeNotFound, message, "")
}

// Unauthorized ответ защищённого маршрута без сессии: интерфейс уходит на redirect.
func Unauthorized(c *gin.Context, message, redirect string) {
	fail(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, message, redirect)
}

func Forbidden(c *gin.Context, message string) {
	fail(c, http.StatusForbidden, apperror.ErrCodeForbidden, message, "")
}

func TooManyRequests(c *gin.Context, message string) {
	fail(c, http.StatusTooManyRequests, apperror.ErrCodeRequest, message, "")
}

// fail ответ с ошибкой, цепочка обработчиков прерывается.
func fail(c *gin.Context, status int, code apperror.ErrorCode, message, redirect string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: string(code), Message: message, Redirect: redirect},
	})
}
