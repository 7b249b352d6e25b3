// Package response renders JSON bodies and the error envelope of the REST API.
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	gerr "github.com/myshop/myshop-manager/internal/errors"
)

type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	ErrorText  string `json:"error,omitempty"` // application-level error message
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErr(status int, err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		ErrorText:      err.Error(),
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return newErr(http.StatusBadRequest, err)
}

func ErrUnauthorized(err error) render.Renderer {
	return newErr(http.StatusUnauthorized, err)
}

func ErrForbidden(err error) render.Renderer {
	return newErr(http.StatusForbidden, err)
}

func ErrTooManyRequests(err error) render.Renderer {
	return newErr(http.StatusTooManyRequests, err)
}

// ErrInternalServerError hides err from the client.
func ErrInternalServerError(err error) render.Renderer {
	e := newErr(http.StatusInternalServerError, err)
	e.ErrorText = "internal error"
	return e
}

// StatusOf maps an error to its HTTP status code.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, gerr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, gerr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, gerr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, gerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gerr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error renders err with the status StatusOf picks. Server errors are logged
// and their text is not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		slog.Default().ErrorContext(r.Context(), msg,
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
		render.Render(w, r, ErrInternalServerError(err))
		return
	}
	render.Render(w, r, newErr(status, err))
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// Decode reads a JSON body into v, reporting malformed input as a validation
// error.
func Decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return gerr.Validation("body", "malformed json: %v", err)
	}
	return nil
}

type Message struct {
	Message string `json:"message"`
}
