package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/club-manager/services"
	"github.com/yeremiapane/club-manager/utils"
)

// respondServiceError maps a service error to its HTTP status. Conflict and
// validation messages are meant for the operator and are returned as is.
func respondServiceError(c *gin.Context, err error) {
	var (
		ce *services.ConflictError
		ve *services.ValidationError
	)
	switch {
	case errors.As(err, &ce):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &ve):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrTableNotFound), errors.Is(err, services.ErrBookingNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrTableUnavailable), errors.Is(err, services.ErrTableOccupied),
		errors.Is(err, services.ErrTableNotOccupied), errors.Is(err, services.ErrQueueFull),
		errors.Is(err, services.ErrInvalidSessionState):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondError(c, http.StatusUnauthorized, err)
	default:
		utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Something went wrong, please try again"))
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}
