// Package common holds HTTP response shapes shared by the handlers package.
// It is its own package to avoid an import cycle between handlers and the
// router package.
package common

import (
	"net/http"
	"time"

	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint responds with.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *APIMeta    `json:"meta,omitempty"`
	RequestID string      `json:"requestId"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIMeta carries pagination metadata.
type APIMeta struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// APIError is the wire shape of a failed call: a stable kind, a message, and
// optional field-level detail.
type APIError struct {
	Kind       string                 `json:"kind"`
	Message    string                 `json:"message"`
	Fields     []FieldError           `json:"fields,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	RetryAfter int                    `json:"retryAfter,omitempty"`
}

// FieldError names one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

const RequestIDKey = "X-Request-ID"

func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

func SetRequestID(c *gin.Context, id string) {
	c.Set(RequestIDKey, id)
	c.Header(RequestIDKey, id)
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, APIResponse{Success: true, Data: data, RequestID: GetRequestID(c), Timestamp: time.Now().UTC()})
}

func SuccessWithMeta(c *gin.Context, statusCode int, data interface{}, meta *APIMeta) {
	c.JSON(statusCode, APIResponse{Success: true, Data: data, Meta: meta, RequestID: GetRequestID(c), Timestamp: time.Now().UTC()})
}

func Error(c *gin.Context, statusCode int, apiError *APIError) {
	c.JSON(statusCode, APIResponse{Success: false, Error: apiError, RequestID: GetRequestID(c), Timestamp: time.Now().UTC()})
}

func ValidationErrorResponse(c *gin.Context, fields []FieldError) {
	Error(c, http.StatusBadRequest, &APIError{Kind: string(domainerrors.KindValidation), Message: "request validation failed", Fields: fields})
}

func BadRequestResponse(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, &APIError{Kind: string(domainerrors.KindValidation), Message: message})
}

func UnauthorizedResponse(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, &APIError{Kind: string(domainerrors.KindAuthentication), Message: message})
}

func ForbiddenResponse(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, &APIError{Kind: string(domainerrors.KindForbidden), Message: message})
}

func TooManyRequestsResponse(c *gin.Context, retryAfter int) {
	Error(c, http.StatusTooManyRequests, &APIError{
		Kind:       string(domainerrors.KindRateLimited),
		Message:    "rate limit exceeded, please try again later",
		RetryAfter: retryAfter,
	})
}

func InternalErrorResponse(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, &APIError{Kind: string(domainerrors.KindInternal), Message: message})
}

// kindStatus maps each of the nine wire kinds to its HTTP status.
var kindStatus = map[domainerrors.Kind]int{
	domainerrors.KindAuthentication: http.StatusUnauthorized,
	domainerrors.KindForbidden:      http.StatusForbidden,
	domainerrors.KindNotFound:       http.StatusNotFound,
	domainerrors.KindConflict:       http.StatusConflict,
	domainerrors.KindGone:           http.StatusGone,
	domainerrors.KindValidation:     http.StatusBadRequest,
	domainerrors.KindUnprocessable:  http.StatusUnprocessableEntity,
	domainerrors.KindRateLimited:    http.StatusTooManyRequests,
	domainerrors.KindInternal:       http.StatusInternalServerError,
}

// HandleDomainError is the single place a use case error becomes an HTTP
// response. It defers entirely to errors.KindOf — handlers never inspect
// error types themselves.
func HandleDomainError(c *gin.Context, err error) {
	kind := domainerrors.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
		kind = domainerrors.KindInternal
	}

	apiErr := &APIError{Kind: string(kind), Message: err.Error()}

	if fields := extractValidationFields(err); len(fields) > 0 {
		apiErr.Fields = fields
	}
	if brv := extractBusinessRuleViolation(err); brv != nil {
		apiErr.Message = brv.Message
		apiErr.Context = brv.Context
	}

	if status == http.StatusInternalServerError {
		apiErr.Message = "an unexpected error occurred"
	}

	Error(c, status, apiErr)
}

func extractValidationFields(err error) []FieldError {
	var valErr domainerrors.ValidationError
	if ok := asValidationError(err, &valErr); ok {
		return []FieldError{{Field: valErr.Field, Message: valErr.Message}}
	}
	var valErrs domainerrors.ValidationErrors
	if ok := asValidationErrors(err, &valErrs); ok {
		fields := make([]FieldError, len(valErrs))
		for i, v := range valErrs {
			fields[i] = FieldError{Field: v.Field, Message: v.Message}
		}
		return fields
	}
	return nil
}

func asValidationError(err error, target *domainerrors.ValidationError) bool {
	if v, ok := err.(domainerrors.ValidationError); ok {
		*target = v
		return true
	}
	return false
}

func asValidationErrors(err error, target *domainerrors.ValidationErrors) bool {
	if v, ok := err.(domainerrors.ValidationErrors); ok {
		*target = v
		return true
	}
	return false
}

func extractBusinessRuleViolation(err error) *domainerrors.BusinessRuleViolation {
	if v, ok := err.(*domainerrors.BusinessRuleViolation); ok {
		return v
	}
	return nil
}
