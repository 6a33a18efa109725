package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/club-manager/services"
	"github.com/yeremiapane/club-manager/utils"
)

type SettingsController struct {
	Settings *services.SettingsService
}

func NewSettingsController(settings *services.SettingsService) *SettingsController {
	return &SettingsController{Settings: settings}
}

func (sc *SettingsController) GetSettings(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Current settings", sc.Settings.Get())
}

// amountRequest accepts the value as a JSON number or string.
type amountRequest struct {
	Value interface{} `json:"value"`
}

func (r amountRequest) raw() string {
	if r.Value == nil {
		return ""
	}
	return fmt.Sprint(r.Value)
}

func (sc *SettingsController) UpdateHourlyRate(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	st, err := sc.Settings.UpdateHourlyRate(c.Request.Context(), req.raw())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hourly rate updated", st)
}

func (sc *SettingsController) UpdateReservationFee(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	st, err := sc.Settings.UpdateReservationFee(c.Request.Context(), req.raw())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation fee updated", st)
}

func (sc *SettingsController) ChangePassword(c *gin.Context) {
	var req struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
		Confirm string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := sc.Settings.ChangePassword(c.Request.Context(), req.Current, req.New, req.Confirm); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Password changed", nil)
}
