package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/club-manager/services"
	"github.com/yeremiapane/club-manager/utils"
)

type TableController struct {
	Tables *services.TableService
}

func NewTableController(tables *services.TableService) *TableController {
	return &TableController{Tables: tables}
}

// GetAllTables -> menampilkan seluruh meja
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.ListTables(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// CreateTable -> menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.AddTable(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

func (tc *TableController) RenameTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.EditName(c.Request.Context(), id, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table renamed", table)
}

// DeleteTable -> menghapus meja yang sedang kosong
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	if err := tc.Tables.DeleteTable(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", nil)
}

type startSessionRequest struct {
	GuestName string `json:"guest_name"`
	// Mode is "open" (default) or "fixed".
	Mode  string  `json:"mode" binding:"omitempty,oneof=open fixed"`
	Hours float64 `json:"hours" binding:"omitempty,gt=0,lte=24"`
}

func (tc *TableController) StartSession(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var req startSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	mode := services.OpenEnded()
	if req.Mode == "fixed" {
		mode = services.FixedDuration(req.Hours)
	}

	table, err := tc.Tables.StartSession(c.Request.Context(), id, req.GuestName, mode)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session started", table)
}

func (tc *TableController) FinishSession(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	receipt, err := tc.Tables.FinishSession(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session finished. Total: "+utils.FormatPeso(receipt.Amount), receipt)
}

func (tc *TableController) NextReservation(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	slot, err := tc.Tables.NextReservation(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if slot == nil {
		utils.RespondJSON(c, http.StatusOK, "No upcoming reservation today", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Next reservation at "+services.FormatClock(slot.At), slot.Booking)
}
