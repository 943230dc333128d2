package main

import (
	"errors"
	"net/http"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	redisstore "github.com/javacachava/pizza-brava-sub000/internal/store/redis"
)

var (
	ErrInvalidID    = errors.New("invalid ID format")
	ErrInvalidIndex = errors.New("invalid cart line index")
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJsonError(w, http.StatusInternalServerError, "the server encountered a problem", "")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJsonError(w, http.StatusBadRequest, ve.Message, ve.Field)
		return
	}
	writeJsonError(w, http.StatusBadRequest, err.Error(), "")
}

func (app *application) notFoundError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJsonError(w, http.StatusNotFound, "not found", "")
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("conflict", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJsonError(w, http.StatusConflict, err.Error(), "")
}

func (app *application) submitFailedResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("order submission failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJsonError(w, http.StatusServiceUnavailable, domain.ErrSubmitFailed.Error(), "")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	w.Header().Set("Retry-After", retryAfter)

	writeJsonError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter, "")
}

// errorResponse maps service errors onto status codes.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsValidation(err):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, domain.ErrNotFound):
		app.notFoundError(w, r, err)
	case errors.Is(err, domain.ErrStatusConflict), errors.Is(err, domain.ErrCheckoutInProgress), errors.Is(err, redisstore.ErrCartBusy):
		app.conflictResponse(w, r, err)
	case errors.Is(err, domain.ErrSubmitFailed):
		app.submitFailedResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
