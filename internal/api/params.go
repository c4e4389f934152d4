package api

import (
	"net/http"
	"strconv"

	"shareit/internal/middleware"
	"shareit/internal/models"

	"github.com/gin-gonic/gin"
)

func callerID(c *gin.Context) int64 {
	return middleware.UserID(c)
}

// pathID reads a positive integer path parameter. It writes the error
// response itself and returns false on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "path parameter %s must be a positive integer", name)
		return 0, false
	}
	return id, true
}

// pageParams reads from/size with defaults 0 and DefaultPageSize. Range checks
// are left to the services.
func pageParams(c *gin.Context) (from, size int, ok bool) {
	from, size = 0, models.DefaultPageSize
	if raw := c.Query("from"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "from must be an integer")
			return 0, 0, false
		}
		from = v
	}
	if raw := c.Query("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "size must be an integer")
			return 0, 0, false
		}
		size = v
	}
	return from, size, true
}

// stateParam rejects unknown states with the message itself in the error
// field, which is what existing clients match on.
func stateParam(c *gin.Context) (models.BookingState, bool) {
	state, err := models.ParseBookingState(c.Query("state"))
	if err != nil {
		middleware.Abort(c, http.StatusBadRequest, err.Error(), err.Error())
		return "", false
	}
	return state, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "malformed request body: %v", err)
		return false
	}
	return true
}
