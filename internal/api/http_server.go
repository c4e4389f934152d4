package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"shareit/internal/config"
	"shareit/internal/middleware"
	"shareit/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const serviceName = "server"

// Services bundles the operations the HTTP surface exposes.
type Services struct {
	Users    *service.UserService
	Items    *service.ItemService
	Bookings *service.BookingService
	Requests *service.RequestService
}

// Pinger reports storage health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPServer exposes the core REST API.
type HTTPServer struct {
	engine *gin.Engine
	server *http.Server
	logger *zerolog.Logger
}

func NewHTTPServer(cfg config.ServerConfig, svc Services, db Pinger, logger *zerolog.Logger) *HTTPServer {
	engine := NewRouter(svc, db, logger)
	return &HTTPServer{
		engine: engine,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           engine,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(svc Services, db Pinger, logger *zerolog.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.Metrics(serviceName),
		middleware.Recovery(logger),
	)

	h := &handlers{svc: svc, logger: logger}
	engine.GET("/healthz", health(db))

	users := engine.Group("/users")
	users.GET("", h.listUsers)
	users.GET("/:id", h.getUser)
	users.POST("", h.createUser)
	users.PATCH("/:id", h.updateUser)
	users.DELETE("/:id", h.deleteUser)

	items := engine.Group("/items", middleware.RequireUserID())
	items.GET("", h.listOwnItems)
	items.GET("/search", h.searchItems)
	items.GET("/:id", h.getItem)
	items.POST("", h.createItem)
	items.PATCH("/:id", h.updateItem)
	items.POST("/:id/comment", h.addComment)

	bookings := engine.Group("/bookings", middleware.RequireUserID())
	bookings.POST("", h.createBooking)
	bookings.GET("", h.listBookerBookings)
	bookings.GET("/owner", h.listOwnerBookings)
	bookings.GET("/owner/export", h.exportOwnerBookings)
	bookings.GET("/:id", h.getBooking)
	bookings.PATCH("/:id", h.decideBooking)

	requests := engine.Group("/requests", middleware.RequireUserID())
	requests.POST("", h.createRequest)
	requests.GET("", h.listOwnRequests)
	requests.GET("/all", h.listOtherRequests)
	requests.GET("/:id", h.getRequest)

	engine.NoRoute(func(c *gin.Context) {
		middleware.Abort(c, http.StatusNotFound, "NotFound", "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})

	return engine
}

func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
