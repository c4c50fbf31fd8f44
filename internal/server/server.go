package server

import (
	"context"
	"net/http"

	"classfit/internal/auth"
	"classfit/internal/booking"
	"classfit/internal/bus"
	"classfit/internal/class"
	"classfit/internal/config"
	"classfit/internal/email"
	"classfit/internal/recommend"
	"classfit/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
	bus    *bus.Bus
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service, changes *bus.Bus) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	userRepo := user.NewRepository(db)
	classRepo := class.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	userService := user.NewService(userRepo, cfg.JWTSecret)
	bookingService := booking.NewService(bookingRepo, userRepo, changes, emailService)
	classService := class.NewService(classRepo, bookingRepo, changes)
	recommendService := recommend.NewService(classRepo, bookingRepo, userRepo)

	userHandler := user.NewHandler(userService)
	classHandler := class.NewHandler(classService)
	bookingHandler := booking.NewHandler(bookingService)
	recommendHandler := recommend.NewHandler(recommendService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	optionalAuth := auth.OptionalAuthMiddleware(cfg.JWTSecret)

	// Catalog reads work anonymously; a bearer token upgrades them with
	// the caller's own booking state.
	browse := router.Group("/")
	browse.Use(optionalAuth)
	{
		browse.GET("/classes", classHandler.ListClasses)
		browse.GET("/classes/:slug", classHandler.GetClass)
		browse.GET("/sessions", classHandler.ListSessions)
		browse.GET("/sessions/today", classHandler.TodaySessions)
		browse.GET("/trainers", userHandler.ListTrainers)
	}

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.PUT("/me/profile", userHandler.UpdateProfile)
		protected.POST("/sessions/:sessionID/book", bookingHandler.BookSession)
		protected.POST("/sessions/:sessionID/cancel", bookingHandler.CancelBooking)
		protected.GET("/bookings", bookingHandler.ListMyBookings)
		protected.GET("/recommendations", recommendHandler.Recommendations)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/classes", classHandler.CreateClass)
		admin.PUT("/classes/:classID", classHandler.UpdateClass)
		admin.DELETE("/classes/:classID", classHandler.DeactivateClass)
		admin.POST("/classes/:classID/sessions", classHandler.CreateSession)
		admin.POST("/sessions/:sessionID/cancel", classHandler.CancelSession)
	}

	router.GET("/events", Events(changes))
	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
		bus:    changes,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
