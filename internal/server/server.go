package server

import (
	"prepdeck-server/internal/config"
	"prepdeck-server/internal/handler"
	authmw "prepdeck-server/internal/middleware"
	"prepdeck-server/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	auth            *authmw.Auth
	paymentHandler  *handler.PaymentHandler
	checkoutHandler *handler.CheckoutHandler
	contentHandler  *handler.ContentHandler
}

func NewServer(
	cfg *config.Config,
	orderService service.OrderService,
	verifier service.SignatureVerifier,
	checkoutService service.CheckoutService,
	contentService service.ContentService,
	entitlementService service.EntitlementService,
) *Server {
	e := echo.New()

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	s := &Server{
		echo:            e,
		auth:            authmw.NewAuth(cfg.Auth.JWTSecret),
		paymentHandler:  handler.NewPaymentHandler(orderService, verifier),
		checkoutHandler: handler.NewCheckoutHandler(checkoutService, cfg.Razorpay.KeyID),
		contentHandler:  handler.NewContentHandler(contentService, entitlementService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- trusted payment endpoints --------
	api.POST("/orders", s.paymentHandler.CreateOrder, s.auth.Require())
	api.POST("/payments/verify", s.paymentHandler.VerifyPayment, s.auth.Require())

	// -------- checkout orchestration --------
	checkout := api.Group("/checkout", s.auth.Require())
	checkout.POST("", s.checkoutHandler.Start)
	checkout.GET("/:id", s.checkoutHandler.GetState)
	checkout.POST("/:id/callback", s.checkoutHandler.Callback)
	checkout.POST("/:id/abandon", s.checkoutHandler.Abandon)

	// -------- content (anonymous browsing allowed) --------
	api.GET("/modules/:module/questions", s.contentHandler.ListQuestions, s.auth.Optional())
	api.GET("/questions/:id", s.contentHandler.GetQuestion, s.auth.Optional())
	api.GET("/me/entitlements", s.contentHandler.GetEntitlements, s.auth.Require())
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
