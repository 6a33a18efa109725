package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/club-manager/services"
	"github.com/yeremiapane/club-manager/utils"
)

type HistoryController struct {
	History *services.HistoryService
}

func NewHistoryController(history *services.HistoryService) *HistoryController {
	return &HistoryController{History: history}
}

func (hc *HistoryController) GetHistory(c *gin.Context) {
	entries, err := hc.History.ListHistory(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "History", entries)
}

func (hc *HistoryController) ClearHistory(c *gin.Context) {
	n, err := hc.History.ClearHistory(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("%d history entries removed", n), gin.H{"removed": n})
}

func (hc *HistoryController) GetEarnings(c *gin.Context) {
	earnings, err := hc.History.Earnings(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Total earnings "+utils.FormatPeso(earnings.Total), earnings)
}
