package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"drively/internal/infra/config"
	"drively/internal/infra/obs"
)

type CheckoutHTTP interface {
	Start(c *gin.Context)
	Get(c *gin.Context)
	SetDates(c *gin.Context)
	SetAddOns(c *gin.Context)
	SetLocations(c *gin.Context)
	SetRequests(c *gin.Context)
	ContinueToPayment(c *gin.Context)
	Review(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
}

type CarsHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
}

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type MeHTTP interface {
	ListBookings(c *gin.Context)
	Notices(c *gin.Context)
}

type Handlers struct {
	Checkout       CheckoutHTTP
	Cars           CarsHTTP
	Auth           AuthHTTP
	Me             MeHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Cars != nil {
		api.GET("/cars", h.Cars.List)
		api.GET("/cars/:id", h.Cars.Get)
	}
	if h.Checkout != nil {
		api.POST("/checkout", h.Checkout.Start)
		api.GET("/checkout/:id", h.Checkout.Get)
		api.PUT("/checkout/:id/dates", h.Checkout.SetDates)
		api.PUT("/checkout/:id/addons", h.Checkout.SetAddOns)
		api.PUT("/checkout/:id/locations", h.Checkout.SetLocations)
		api.PUT("/checkout/:id/requests", h.Checkout.SetRequests)
		api.POST("/checkout/:id/payment", h.Checkout.ContinueToPayment)
		api.POST("/checkout/:id/review", h.Checkout.Review)
		api.POST("/checkout/:id/confirm", h.Checkout.Confirm)
		api.DELETE("/checkout/:id", h.Checkout.Cancel)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.ListBookings)
		meGroup.GET("/notices", h.Me.Notices)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
