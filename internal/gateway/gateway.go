// Package gateway validates client calls and forwards the valid ones to the core server.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"

	"shareit/internal/config"
	"shareit/internal/metrics"
	"shareit/internal/middleware"
	"shareit/internal/models"
	"shareit/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const (
	serviceName  = "gateway"
	maxBodyBytes = 1 << 20
)

type Gateway struct {
	proxy    *httputil.ReverseProxy
	limiter  ratelimit.Limiter
	validate *Validator
	logger   *zerolog.Logger
}

// New builds a gateway forwarding to cfg.ServerURL. limiter may be nil to
// disable rate limiting.
func New(cfg config.GatewayConfig, limiter ratelimit.Limiter, logger *zerolog.Logger) (*Gateway, error) {
	target, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.ForwardTimeout
	proxy.Transport = transport

	g := &Gateway{proxy: proxy, limiter: limiter, validate: NewValidator(), logger: logger}
	proxy.ErrorHandler = g.forwardFailed
	return g, nil
}

// Handler returns the routed gateway wrapped in CORS handling.
func (g *Gateway) Handler(allowedOrigins []string) http.Handler {
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.RequestLogger(g.logger),
		middleware.Metrics(serviceName),
		middleware.Recovery(g.logger),
		g.rateLimit(),
	)

	engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	users := engine.Group("/users")
	users.GET("", g.forward)
	users.GET("/:id", g.withID("id"), g.forward)
	users.POST("", g.createUser)
	users.PATCH("/:id", g.withID("id"), g.updateUser)
	users.DELETE("/:id", g.withID("id"), g.forward)

	items := engine.Group("/items", middleware.RequireUserID())
	items.GET("", g.withPage, g.forward)
	items.GET("/search", g.withPage, g.forward)
	items.GET("/:id", g.withID("id"), g.forward)
	items.POST("", g.createItem)
	items.PATCH("/:id", g.withID("id"), g.updateItem)
	items.POST("/:id/comment", g.withID("id"), g.addComment)

	bookings := engine.Group("/bookings", middleware.RequireUserID())
	bookings.POST("", g.createBooking)
	bookings.GET("", g.withState, g.withPage, g.forward)
	bookings.GET("/owner", g.withState, g.withPage, g.forward)
	bookings.GET("/owner/export", g.withState, g.forward)
	bookings.GET("/:id", g.withID("id"), g.forward)
	bookings.PATCH("/:id", g.withID("id"), g.withApproved, g.forward)

	requests := engine.Group("/requests", middleware.RequireUserID())
	requests.POST("", g.createRequest)
	requests.GET("", g.forward)
	requests.GET("/all", g.withPage, g.forward)
	requests.GET("/:id", g.withID("id"), g.forward)

	engine.NoRoute(func(c *gin.Context) {
		middleware.Abort(c, http.StatusNotFound, "NotFound", "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})

	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", models.HeaderUserID, middleware.HeaderRequestID},
		ExposedHeaders:   []string{middleware.HeaderRequestID},
		AllowCredentials: true,
	}).Handler(engine)
}

// forward hands the request to the core server and streams its answer back untouched.
func (g *Gateway) forward(c *gin.Context) {
	g.proxy.ServeHTTP(c.Writer, c.Request)
}

func (g *Gateway) forwardFailed(w http.ResponseWriter, r *http.Request, err error) {
	metrics.IncForwardError()
	status := http.StatusBadGateway
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		status = http.StatusGatewayTimeout
	}
	g.logger.Error().Err(err).
		Str("request_id", r.Header.Get(middleware.HeaderRequestID)).
		Str("path", r.URL.Path).
		Msg("forward to core server failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":"InternalError","description":"core server unavailable"}`)
}

func (g *Gateway) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.limiter == nil {
			c.Next()
			return
		}

		key := c.GetHeader(models.HeaderUserID)
		if key == "" {
			key = "ip:" + c.ClientIP()
		} else {
			key = "user:" + key
		}

		allowed, err := g.limiter.Allow(c.Request.Context(), key)
		if err != nil {
			g.logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, letting request through")
			c.Next()
			return
		}
		if !allowed {
			metrics.IncRateLimited()
			middleware.Abort(c, http.StatusTooManyRequests, "TooManyRequests", "rate limit exceeded")
			return
		}
		c.Next()
	}
}

// bindBody decodes the JSON body into dst and restores it for forwarding.
func (g *Gateway) bindBody(c *gin.Context, dst any) bool {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		invalid(c, "cannot read request body")
		return false
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	c.Request.ContentLength = int64(len(raw))

	if err := decodeJSON(raw, dst); err != nil {
		invalid(c, "malformed request body: "+err.Error())
		return false
	}
	return true
}

func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return errors.New("empty body")
	}
	return json.Unmarshal(raw, dst)
}

func invalid(c *gin.Context, description string) {
	middleware.Abort(c, http.StatusBadRequest, "ValidationFailure", description)
}

func (g *Gateway) withID(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param(name), 10, 64)
		if err != nil || id <= 0 {
			invalid(c, name+" must be a positive integer")
			return
		}
		c.Next()
	}
}

func (g *Gateway) withPage(c *gin.Context) {
	from, size := 0, models.DefaultPageSize
	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = strconv.Atoi(raw); err != nil {
			invalid(c, "from must be an integer")
			return
		}
	}
	if raw := c.Query("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			invalid(c, "size must be an integer")
			return
		}
	}
	if from < 0 || size <= 0 {
		invalid(c, fmt.Sprintf("invalid pagination: from=%d, size=%d", from, size))
		return
	}
	c.Next()
}

func (g *Gateway) withState(c *gin.Context) {
	if _, err := models.ParseBookingState(c.Query("state")); err != nil {
		middleware.Abort(c, http.StatusBadRequest, err.Error(), err.Error())
		return
	}
	c.Next()
}

func (g *Gateway) withApproved(c *gin.Context) {
	if _, err := strconv.ParseBool(c.Query("approved")); err != nil {
		invalid(c, "approved must be true or false")
		return
	}
	c.Next()
}

func (g *Gateway) createBooking(c *gin.Context) {
	var p bookingPayload
	if !g.bindBody(c, &p) {
		return
	}
	if err := g.validate.Booking(p); err != nil {
		invalid(c, err.Error())
		return
	}
	g.forward(c)
}

func (g *Gateway) createItem(c *gin.Context) {
	var p itemCreatePayload
	if !g.bindBody(c, &p) {
		return
	}
	if err := g.validate.Struct(p); err != nil {
		invalid(c, err.Error())
		return
	}
	g.forward(c)
}

func (g *Gateway) updateItem(c *gin.Context) {
	var p itemUpdatePayload
	if !g.bindBody(c, &p) {
		return
	}
	if err := g.validate.ItemUpdate(p); err != nil {
		invalid(c, err.Error())
		return
	}
	g.forward(c)
}

func (g *Gateway) addComment(c *gin.Context) {
	var p commentPayload
	if !g.bindBody(c, &p) {
		return
	}
	if err := g.validate.Struct(p); err != nil {
		invalid(c, err.Error())
		return
	}
	g.forward(c)
}

func (g *Gateway) createRequest(c *gin.Context) {
	var p requestPayload
	if !g.bindBody(c, &p) {
		return
	}
	if err := g.validate.Struct(p); err != nil {
		invalid(c, err.Error())
		return
	}
	g.forward(c)
}

func (g *Gateway) createUser(c *gin.Context) {
	var p userCreatePayload
	if !g.bindBody(c, &p) {
		return
	}
	if err := g.validate.Struct(p); err != nil {
		invalid(c, err.Error())
		return
	}
	g.forward(c)
}

func (g *Gateway) updateUser(c *gin.Context) {
	var p userUpdatePayload
	if !g.bindBody(c, &p) {
		return
	}
	if err := g.validate.UserUpdate(p); err != nil {
		invalid(c, err.Error())
		return
	}
	g.forward(c)
}
