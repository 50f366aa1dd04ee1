package main

import (
	"context"
	"debug_contest/internal/api"
	"debug_contest/internal/app/projector"
	"debug_contest/internal/app/service"
	"debug_contest/internal/common/security"
	"debug_contest/internal/domain/repository"
	"debug_contest/internal/platform/config"
	"debug_contest/internal/platform/database"
	"debug_contest/internal/platform/feed"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis (teams change feed)
	feed.ConnectRedis()
	defer feed.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	teamRepo := repository.NewPgTeamRepository(database.DB)
	questionRepo := repository.NewPgQuestionRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)

	// 6. Initialize Services
	teamFeed := feed.NewRedisTeamFeed(feed.RDB, config.AppConfig.TeamFeedChannel)
	authService := service.NewAuthService(teamRepo, questionRepo)
	contestService := service.NewContestService(questionRepo, teamRepo, submissionRepo, teamFeed, database.DB)
	adminService := service.NewAdminService(questionRepo, teamRepo, submissionRepo, database.DB)

	// 7. Initialize Leaderboard Projector (as a goroutine)
	leaderboard := projector.NewLeaderboard(teamRepo, teamFeed, config.AppConfig.LeaderboardSize)
	projectorCtx, projectorCancel := context.WithCancel(context.Background())
	defer projectorCancel()
	go leaderboard.Start(projectorCtx)
	fmt.Println("Leaderboard projector started.")

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, contestService, adminService, leaderboard)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	projectorCancel() // Signal projector to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and projector stopped gracefully.")
}
