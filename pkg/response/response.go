package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds carried in the response body so clients can branch on the
// failure class without parsing messages.
const (
	KindValidation = "validation"
	KindNotFound   = "not_found"
	KindConflict   = "conflict"
	KindGeneration = "generation"
	KindCredential = "credential"
	KindInternal   = "internal"
)

// Response is the unified API response format.
type Response struct {
	Code    int         `json:"code"`
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError is a structured application error with an HTTP status and a
// machine-readable kind.
type AppError struct {
	HTTPStatus int
	Kind       string
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewValidation reports malformed input: bad date ranges, overlapping
// sprints, bad query strings, malformed email or mobile formats.
func NewValidation(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Kind: KindValidation, Message: msg}
}

// NewNotFound reports a referenced entity id that does not exist.
func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Kind: KindNotFound, Message: msg}
}

// NewConflict reports a uniqueness violation such as a duplicate email.
func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Kind: KindConflict, Message: msg}
}

// NewGeneration reports an upstream text-generation failure.
func NewGeneration(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadGateway, Kind: KindGeneration, Message: msg}
}

// NewCredential reports a password mismatch on credential validation.
func NewCredential(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Kind: KindCredential, Message: msg}
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. If err is an *AppError its status and kind
// are used; anything else is rendered as a generic 500 without leaking
// internals.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.HTTPStatus,
			Kind:    appErr.Kind,
			Message: appErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: "internal server error",
	})
}

// BadRequest sends a 400 validation error, for malformed request bodies and
// path parameters caught at the handler boundary.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: 400, Kind: KindValidation, Message: msg})
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: 404, Kind: KindNotFound, Message: msg})
}
