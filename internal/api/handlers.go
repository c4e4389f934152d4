package api

import (
	"net/http"
	"strconv"

	"shareit/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type handlers struct {
	svc    Services
	logger *zerolog.Logger
}

func (h *handlers) fail(c *gin.Context, err error) {
	writeError(c, h.logger, err)
}

// users

func (h *handlers) listUsers(c *gin.Context) {
	users, err := h.svc.Users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *handlers) getUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.Users.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlers) createUser(c *gin.Context) {
	var dto models.UserDTO
	if !bindJSON(c, &dto) {
		return
	}
	user, err := h.svc.Users.Create(c.Request.Context(), dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlers) updateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var dto models.UserDTO
	if !bindJSON(c, &dto) {
		return
	}
	user, err := h.svc.Users.Update(c.Request.Context(), id, dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlers) deleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Users.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// items

func (h *handlers) listOwnItems(c *gin.Context) {
	from, size, ok := pageParams(c)
	if !ok {
		return
	}
	items, err := h.svc.Items.FindByOwner(c.Request.Context(), callerID(c), from, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handlers) searchItems(c *gin.Context) {
	from, size, ok := pageParams(c)
	if !ok {
		return
	}
	items, err := h.svc.Items.Search(c.Request.Context(), c.Query("text"), from, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handlers) getItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.Items.GetByID(c.Request.Context(), id, callerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handlers) createItem(c *gin.Context) {
	var dto models.ItemDTO
	if !bindJSON(c, &dto) {
		return
	}
	item, err := h.svc.Items.Create(c.Request.Context(), callerID(c), dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handlers) updateItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var dto models.ItemDTO
	if !bindJSON(c, &dto) {
		return
	}
	item, err := h.svc.Items.Update(c.Request.Context(), id, callerID(c), dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handlers) addComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var dto models.CommentDTO
	if !bindJSON(c, &dto) {
		return
	}
	comment, err := h.svc.Items.AddComment(c.Request.Context(), id, callerID(c), dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// bookings

func (h *handlers) createBooking(c *gin.Context) {
	var dto models.NewBookingDTO
	if !bindJSON(c, &dto) {
		return
	}
	booking, err := h.svc.Bookings.Create(c.Request.Context(), callerID(c), dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *handlers) decideBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		badRequest(c, "approved must be true or false")
		return
	}
	booking, err := h.svc.Bookings.Decide(c.Request.Context(), id, callerID(c), approved)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *handlers) getBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := h.svc.Bookings.Get(c.Request.Context(), id, callerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *handlers) listBookerBookings(c *gin.Context) {
	state, ok := stateParam(c)
	if !ok {
		return
	}
	from, size, ok := pageParams(c)
	if !ok {
		return
	}
	bookings, err := h.svc.Bookings.ListForBooker(c.Request.Context(), callerID(c), state, from, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *handlers) listOwnerBookings(c *gin.Context) {
	state, ok := stateParam(c)
	if !ok {
		return
	}
	from, size, ok := pageParams(c)
	if !ok {
		return
	}
	bookings, err := h.svc.Bookings.ListForOwner(c.Request.Context(), callerID(c), state, from, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// requests

func (h *handlers) createRequest(c *gin.Context) {
	var dto models.ItemRequestDTO
	if !bindJSON(c, &dto) {
		return
	}
	request, err := h.svc.Requests.Create(c.Request.Context(), callerID(c), dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *handlers) listOwnRequests(c *gin.Context) {
	requests, err := h.svc.Requests.ListOwn(c.Request.Context(), callerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *handlers) listOtherRequests(c *gin.Context) {
	from, size, ok := pageParams(c)
	if !ok {
		return
	}
	requests, err := h.svc.Requests.ListOthers(c.Request.Context(), callerID(c), from, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *handlers) getRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	request, err := h.svc.Requests.GetByID(c.Request.Context(), id, callerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
