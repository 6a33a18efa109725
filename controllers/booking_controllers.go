package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/club-manager/services"
	"github.com/yeremiapane/club-manager/utils"
)

type BookingController struct {
	Queue *services.QueueService
}

func NewBookingController(queue *services.QueueService) *BookingController {
	return &BookingController{Queue: queue}
}

func (bc *BookingController) GetBookings(c *gin.Context) {
	bookings, err := bc.Queue.ListBookings(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bookings", bookings)
}

// JoinQueue -> waitlist atau reservasi terjadwal
func (bc *BookingController) JoinQueue(c *gin.Context) {
	var req services.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	booking, err := bc.Queue.Join(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Booking created", booking)
}

func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, ok := paramID(c, "booking_id")
	if !ok {
		return
	}
	if err := bc.Queue.Cancel(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking canceled", nil)
}

func (bc *BookingController) PromoteBooking(c *gin.Context) {
	id, ok := paramID(c, "booking_id")
	if !ok {
		return
	}
	var req struct {
		TableID uint `json:"table_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := bc.Queue.Promote(c.Request.Context(), id, req.TableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest seated", table)
}

func (bc *BookingController) GetOverdue(c *gin.Context) {
	bookings, err := bc.Queue.Overdue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Overdue reservations", bookings)
}
