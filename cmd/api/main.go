package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/worknest/intranet-backend-go/internal/config"
	appHTTP "github.com/worknest/intranet-backend-go/internal/handler/http"
	"github.com/worknest/intranet-backend-go/internal/pkg/database"
	"github.com/worknest/intranet-backend-go/internal/pkg/email"
	"github.com/worknest/intranet-backend-go/internal/pkg/jwt"
	"github.com/worknest/intranet-backend-go/internal/pkg/oauth"
	"github.com/worknest/intranet-backend-go/internal/repository/postgresql"
	authService "github.com/worknest/intranet-backend-go/internal/service/auth"
	leaveService "github.com/worknest/intranet-backend-go/internal/service/leave"
	notificationService "github.com/worknest/intranet-backend-go/internal/service/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leaveDayRepo := postgresql.NewLeaveDayRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	leaveRuleRepo := postgresql.NewLeaveRuleRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	googleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	dispatcher := notificationService.NewService(notificationRepo, userRepo, emailService, cfg.Leave.StatusEmailDelay)
	defer dispatcher.Stop()

	ledger := leaveService.NewLedger(leaveBalanceRepo)
	calendar := leaveService.NewCalendar()
	leaveSvc := leaveService.NewLeaveService(
		db,
		userRepo,
		leaveRequestRepo,
		leaveDayRepo,
		holidayRepo,
		leaveRuleRepo,
		ledger,
		calendar,
		dispatcher,
		cfg.Leave.DefaultNoticeDays,
	)
	authSvc := authService.NewAuthService(userRepo, jwtService, googleService)

	authHandler := appHTTP.NewAuthHandler(jwtService, authSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	notificationHandler := appHTTP.NewNotificationHandler(dispatcher)

	router := appHTTP.NewRouter(cfg, jwtService, authHandler, leaveHandler, notificationHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Println("Server shutdown error:", err)
	}
}
