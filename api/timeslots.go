package api

import (
	"net/http"

	"github.com/bookabite/reservations/internal/auth"
	"github.com/bookabite/reservations/internal/domain"
	"github.com/bookabite/reservations/internal/service/timeslot"
	"github.com/gin-gonic/gin"
)

type TimeSlotHandler struct {
	service timeslot.TimeSlotUseCase
}

type timeSlotResponse struct {
	ID             string `json:"id"`
	RestaurantID   string `json:"restaurantId"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	TotalSeats     int    `json:"totalSeats"`
	BookedSeats    int    `json:"bookedSeats"`
	AvailableSeats int    `json:"availableSeats"`
}

func toTimeSlotResponse(s domain.TimeSlot) timeSlotResponse {
	return timeSlotResponse{
		ID:             s.ID,
		RestaurantID:   s.RestaurantID,
		Date:           s.Date,
		Time:           s.Time,
		TotalSeats:     s.TotalSeats,
		BookedSeats:    s.BookedSeats,
		AvailableSeats: s.AvailableSeats(),
	}
}

func NewTimeSlotHandler(service timeslot.TimeSlotUseCase) *TimeSlotHandler {
	return &TimeSlotHandler{service: service}
}

func (h *TimeSlotHandler) Register(router *gin.RouterGroup) {
	router.POST("/add", RequireRole(auth.RoleAdmin), h.add)
	router.GET("/list/:restaurantId/:date", h.list)
	router.GET("/availability/:restaurantId/:date/:time", h.availability)
	router.PATCH("/edit", RequireRole(auth.RoleAdmin), h.edit)
}

func (h *TimeSlotHandler) add(c *gin.Context) {
	var req timeslot.AddTimeslotInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	slot, err := h.service.AddTimeslot(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTimeSlotResponse(*slot))
}

func (h *TimeSlotHandler) list(c *gin.Context) {
	slots, err := h.service.ListTimeslots(c.Request.Context(), c.Param("restaurantId"), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]timeSlotResponse, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, toTimeSlotResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TimeSlotHandler) availability(c *gin.Context) {
	slot, err := h.service.GetAvailability(c.Request.Context(), c.Param("restaurantId"), c.Param("date"), c.Param("time"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTimeSlotResponse(*slot))
}

func (h *TimeSlotHandler) edit(c *gin.Context) {
	var req timeslot.UpdateTimeslotInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	slot, err := h.service.UpdateTimeslot(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTimeSlotResponse(*slot))
}
