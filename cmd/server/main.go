package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ristomkd/LibraryNetwork/internal/config"
	"github.com/ristomkd/LibraryNetwork/internal/database"
	"github.com/ristomkd/LibraryNetwork/internal/handlers"
	"github.com/ristomkd/LibraryNetwork/internal/middleware"
	"github.com/ristomkd/LibraryNetwork/internal/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.Server.Mode)

	db, err := database.New(cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redis, err := database.NewRedis(cfg)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redis.Close()

	// Use RSA keys if available, otherwise generate fallback keys
	jwtPrivateKey := cfg.JWT.PrivateKey
	refreshPrivateKey := cfg.JWT.RefreshPrivateKey

	if jwtPrivateKey == "" {
		jwtPrivateKey = getDefaultRSAPrivateKey()
	}
	if refreshPrivateKey == "" {
		refreshPrivateKey = getDefaultRSAPrivateKey()
	}

	authService, err := services.NewAuthService(
		jwtPrivateKey,
		refreshPrivateKey,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		7*24*time.Hour, // 7 days for refresh token
		logger,
		redis.Client,
	)
	if err != nil {
		slog.Error("Failed to initialize auth service", "error", err)
		os.Exit(1)
	}

	finePerDay := decimal.NewFromFloat(cfg.Loans.FinePerDay)

	userService := services.NewUserService(db.Queries, authService, logger)
	bookService := services.NewBookService(db.Queries)
	bookCopyService := services.NewBookCopyService(db.Queries)
	loanService := services.NewLoanService(db.Queries, cfg.Loans.PeriodDays, finePerDay)
	memberService := services.NewMemberService(db.Queries)
	librarianService := services.NewLibrarianService(db.Queries)
	libraryService := services.NewLibraryService(db.Queries)
	dashboardService := services.NewDashboardService(db.Queries)

	r := gin.New()

	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(redis.Client)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	healthHandler := handlers.NewHealthHandler(db, redis)
	authHandler := handlers.NewAuthHandler(userService)
	bookHandler := handlers.NewBookHandler(bookService, cfg.Uploads.Dir)
	bookCopyHandler := handlers.NewBookCopyHandler(bookCopyService)
	loanHandler := handlers.NewLoanHandler(loanService)
	memberHandler := handlers.NewMemberHandler(memberService)
	librarianHandler := handlers.NewLibrarianHandler(librarianService)
	libraryHandler := handlers.NewLibraryHandler(libraryService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	uploadHandler := handlers.NewUploadHandler(cfg.Uploads.Dir)

	// Public routes (no authentication required)
	public := r.Group("/api/v1")
	{
		public.GET("/ping", healthHandler.Ping)
		public.GET("/health", healthHandler.Health)

		// The catalog and the library directory are browsable without an
		// account.
		search := public.Group("")
		search.Use(rateLimiter.SearchLimit())
		{
			search.GET("/books", bookHandler.SearchBooks)
			search.GET("/books/categories", bookHandler.ListCategories)
			search.GET("/books/:id", bookHandler.GetBook)
			search.GET("/libraries", libraryHandler.ListLibraries)
			search.GET("/libraries/:id", libraryHandler.GetLibrary)
			search.GET("/libraries/:id/inventory", libraryHandler.GetLibraryInventory)
		}

		auth := public.Group("/auth")
		auth.Use(rateLimiter.AuthLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}
	}

	// Protected routes (authentication required)
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware.RequireAuth())
	protected.Use(rateLimiter.APILimit())
	{
		protected.GET("/profile", authHandler.GetProfile)
		protected.PUT("/profile", authHandler.UpdateProfile)
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		// Loans are visible to both roles; the service scopes the rows.
		protected.GET("/loans", loanHandler.ListLoans)
		protected.GET("/loans/:id", loanHandler.GetLoan)
		protected.POST("/loans/:id/pay-fine", loanHandler.PayFine)

		// Member self-service borrowing
		member := protected.Group("")
		member.Use(authMiddleware.RequireMember())
		{
			member.GET("/borrow/:book_id", loanHandler.BorrowOptions)
			member.POST("/borrow", loanHandler.Borrow)
		}

		// Admin routes, scoped to the admin's own library
		admin := protected.Group("")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.GET("/dashboard", dashboardHandler.GetDashboard)

			admin.POST("/books", bookHandler.CreateBook)
			admin.PUT("/books/:id", bookHandler.UpdateBook)
			admin.DELETE("/books/:id", bookHandler.DeleteBook)

			admin.POST("/book-copies", bookCopyHandler.CreateBookCopy)
			admin.GET("/book-copies", bookCopyHandler.ListBookCopies)
			admin.GET("/book-copies/:id", bookCopyHandler.GetBookCopy)
			admin.PUT("/book-copies/:id", bookCopyHandler.UpdateBookCopy)
			admin.DELETE("/book-copies/:id", bookCopyHandler.DeleteBookCopy)

			admin.POST("/loans", loanHandler.CreateLoan)
			admin.PUT("/loans/:id", loanHandler.UpdateLoan)
			admin.DELETE("/loans/:id", loanHandler.DeleteLoan)
			admin.POST("/loans/:id/return", loanHandler.ReturnLoan)

			admin.POST("/members", memberHandler.CreateMember)
			admin.GET("/members", memberHandler.ListMembers)
			admin.GET("/members/:id", memberHandler.GetMember)
			admin.PUT("/members/:id", memberHandler.UpdateMember)
			admin.DELETE("/members/:id", memberHandler.DeleteMember)

			admin.POST("/librarians", librarianHandler.CreateLibrarian)
			admin.GET("/librarians", librarianHandler.ListLibrarians)
			admin.GET("/librarians/:id", librarianHandler.GetLibrarian)
			admin.PUT("/librarians/:id", librarianHandler.UpdateLibrarian)
			admin.DELETE("/librarians/:id", librarianHandler.DeleteLibrarian)

			admin.POST("/libraries", libraryHandler.CreateLibrary)
			admin.PUT("/libraries/:id", libraryHandler.UpdateLibrary)
			admin.DELETE("/libraries/:id", libraryHandler.DeleteLibrary)

			admin.POST("/uploads/:entity", uploadHandler.UploadImage)
		}
	}

	// Static file serving for uploaded images
	r.Static("/uploads", cfg.Uploads.Dir)

	// Root health check
	r.GET("/health", healthHandler.Health)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", port, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// getDefaultRSAPrivateKey generates a default RSA private key for development
// In production, use proper RSA keys from configuration
func getDefaultRSAPrivateKey() string {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		slog.Error("Failed to generate RSA key", "error", err)
		os.Exit(1)
	}

	privateKeyPEM := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	return string(pem.EncodeToMemory(privateKeyPEM))
}
