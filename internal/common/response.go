package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response API 표준 응답 형식
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// Meta 페이지네이션 메타
type Meta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// ErrorBody 에러 응답
type ErrorBody struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Success returns a success response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessWithMeta returns a success response with pagination
func SuccessWithMeta(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Meta: meta})
}

// SuccessMessage returns a success response carrying a human readable message
func SuccessMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created returns a 201 Created response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// ErrorResponse returns an error response with an explicit status and code.
// The underlying error is never echoed to the client.
func ErrorResponse(c *gin.Context, status int, code Code, message string) {
	c.JSON(status, Response{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}

// FromError maps err onto a status/code pair and writes the error response.
func FromError(c *gin.Context, err error, fallbackMessage string) {
	code := CodeOf(err)
	message := fallbackMessage
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	ErrorResponse(c, StatusOf(code), code, message)
}

// StatusOf returns the HTTP status for a wire code
func StatusOf(code Code) int {
	switch code {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
