package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/bookabite/reservations/internal/auth"
	"github.com/bookabite/reservations/internal/domain"
	"github.com/bookabite/reservations/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type createReservationRequest struct {
	RestaurantID   string `json:"restaurantId"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Guests         int    `json:"guests"`
	SpecialRequest string `json:"specialRequest"`
	CustomerName   string `json:"customerName"`
	CustomerEmail  string `json:"customerEmail"`
	CustomerPhone  string `json:"customerPhone"`
}

type cancelReservationRequest struct {
	Reason string `json:"reason"`
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/add", h.create)
	router.GET("/list", h.listMine)
	router.GET("/code/:code", h.getByCode)
	router.POST("/cancel/:id", h.cancel)
	router.PATCH("/edit/:id", h.edit)
	router.GET("/restaurant/:restaurantId", RequireRole(auth.RoleAdmin), h.listForRestaurant)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.service.CreateReservation(c.Request.Context(), reservation.CreateReservationInput{
		UserID:         identityFrom(c).ID,
		RestaurantID:   req.RestaurantID,
		Date:           req.Date,
		Time:           req.Time,
		Guests:         req.Guests,
		SpecialRequest: req.SpecialRequest,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *ReservationHandler) listMine(c *gin.Context) {
	list, err := h.service.ListForUser(c.Request.Context(), identityFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) getByCode(c *gin.Context) {
	res, err := h.service.GetByConfirmationCode(c.Request.Context(), c.Param("code"), identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	var req cancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.service.CancelReservation(c.Request.Context(), c.Param("id"), identityFrom(c), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) edit(c *gin.Context) {
	var req reservation.UpdateDetailsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.service.UpdateDetails(c.Request.Context(), c.Param("id"), identityFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) listForRestaurant(c *gin.Context) {
	filter := domain.ReservationFilter{
		Date:   c.Query("date"),
		Status: domain.ReservationStatus(c.Query("status")),
	}
	list, err := h.service.ListForRestaurant(c.Request.Context(), c.Param("restaurantId"), filter, identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
