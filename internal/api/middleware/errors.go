package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/authz"
	"juba-homez/internal/services"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var statusFor = []struct {
	err    error
	status int
}{
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrInvalidToken, http.StatusUnauthorized},
	{authz.ErrUnauthenticated, http.StatusUnauthorized},
	{services.ErrTemporarilyLocked, http.StatusForbidden},
	{services.ErrAccountNotActive, http.StatusForbidden},
	{authz.ErrInsufficientRole, http.StatusForbidden},
	{authz.ErrNotOwner, http.StatusForbidden},
	{authz.ErrNotFound, http.StatusNotFound},
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrEmailTaken, http.StatusConflict},
	{services.ErrInvalidTransition, http.StatusConflict},
	{services.ErrInvalidReason, http.StatusBadRequest},
	{services.ErrInvalidInput, http.StatusBadRequest},
	{services.ErrInvalidResetToken, http.StatusBadRequest},
	{services.ErrResetTokenExpired, http.StatusBadRequest},
	{services.ErrUnsupportedMedia, http.StatusBadRequest},
}

var tagNames sync.Once

// useJSONFieldNames makes validation errors name fields the way clients send them.
func useJSONFieldNames() {
	tagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

// ErrorHandler turns the last error attached with c.Error into the error envelope.
func ErrorHandler() gin.HandlerFunc {
	useJSONFieldNames()
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, message, details := translate(err)
		if status == http.StatusInternalServerError {
			log.Printf("request %s %s %s failed: %v", RequestID(c), c.Request.Method, c.Request.URL.Path, err)
		}
		respond.Error(c, status, message, details...)
	}
}

func translate(err error) (int, string, []string) {
	var httpErr *respond.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, httpErr.Message, httpErr.Details
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fieldMessage(fe))
		}
		return http.StatusBadRequest, "Validation error", details
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return http.StatusBadRequest, "Malformed JSON body", nil
	case errors.As(err, &typeErr):
		return http.StatusBadRequest, "Validation error", []string{fmt.Sprintf("%s: must be %s", typeErr.Field, typeErr.Type)}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "Request body is required", nil
	}

	var entityErr *services.EntityError
	if errors.As(err, &entityErr) {
		return http.StatusNotFound, capitalize(entityErr.Error()), nil
	}

	for _, m := range statusFor {
		if errors.Is(err, m.err) {
			return m.status, capitalize(err.Error()), nil
		}
	}
	return http.StatusInternalServerError, "Server error", nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + ": is required"
	case "email":
		return fe.Field() + ": must be a valid email"
	case "min":
		return fmt.Sprintf("%s: must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag())
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Recovery logs panics and answers with the generic 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("panic in %s %s (request %s): %v", c.Request.Method, c.Request.URL.Path, RequestID(c), recovered)
		respond.Error(c, http.StatusInternalServerError, "Server error")
	})
}
