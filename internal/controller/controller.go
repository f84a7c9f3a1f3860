package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vhducng/certprep/internal/dto"
	"github.com/vhducng/certprep/internal/errs"
)

// statusFromError maps the pipeline's sentinel errors to HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrSearchUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrEmptyContent), errors.Is(err, errs.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrFetch), errors.Is(err, errs.ErrTimeout),
		errors.Is(err, errs.ErrSearchFailed), errors.Is(err, errs.ErrMalformedGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(statusFromError(err), dto.ErrorResponse{Message: err.Error()})
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
