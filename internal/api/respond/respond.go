// Package respond writes the JSON envelopes shared by every endpoint.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope wraps every successful response.
type Envelope struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// ErrorBody is the payload of a failed request.
type ErrorBody struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error response.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// HTTPError is a failure that already knows its status and public message.
type HTTPError struct {
	Status  int
	Message string
	Details []string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewError(status int, message string, details ...string) *HTTPError {
	return &HTTPError{Status: status, Message: message, Details: details}
}

func BadRequest(message string, details ...string) *HTTPError {
	return NewError(http.StatusBadRequest, message, details...)
}

func NotFound(message string) *HTTPError {
	return NewError(http.StatusNotFound, message)
}

// OK writes 200 with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Data: data})
}

// Created writes 201 with data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Data: data})
}

// Page writes 200 with data and pagination meta.
func Page(c *gin.Context, data any, meta any) {
	c.JSON(http.StatusOK, Envelope{Data: data, Meta: meta})
}

// Error writes an error envelope and aborts the chain.
func Error(c *gin.Context, status int, message string, details ...string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: ErrorBody{Code: status, Message: message, Details: details}})
}
