package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexussync/auth"
	"nexussync/internal/collab"
	"nexussync/internal/config"
	"nexussync/internal/db"
	"nexussync/internal/editor"
	"nexussync/internal/record"
	"nexussync/internal/user"
	"nexussync/internal/worker"
	"nexussync/internal/ws"
	"nexussync/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Seed database with initial data (for development)
	db.SeedData()

	// Initialize Redis
	redis.InitRedis()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize repositories
	userRepo := user.NewRepository(db.AppDb)
	recordRepo := record.NewRepository(db.AppDb)

	// Initialize services
	userService := user.NewService(userRepo)
	cache := redis.NewCache(redis.RedisClient)
	recordService := record.NewService(recordRepo, cache)

	// Collaboration engine: the channel degrades to local-only when Redis
	// is unavailable, which is a fully supported mode.
	directory := user.NewDirectory(userRepo)
	var channel collab.Channel
	if redis.RedisClient != nil {
		channel = redis.NewPubSubChannel(redis.RedisClient, config.AppConfig.RedisChannelPrefix, logger)
	} else {
		channel = collab.NewLoopback()
	}

	self, ok := directory.Lookup(config.AppConfig.CurrentUserID)
	if !ok {
		log.Fatalf("configured current user %q not found in directory", config.AppConfig.CurrentUserID)
	}
	coordinator := collab.NewCoordinator(self, directory, channel, nil, logger)
	defer coordinator.Close()

	// Background maintenance
	pool := worker.NewPool(4)
	defer pool.Shutdown()
	pool.Every(config.AppConfig.PresenceSweepGap, func(ctx context.Context) error {
		coordinator.SweepPresence(config.AppConfig.PresenceTTL)
		return nil
	})

	// Initialize handlers
	userHandler := user.NewHandler(userService)
	recordHandler := record.NewHandler(recordService)
	collabHandler := collab.NewHandler(coordinator)
	editorHandler := editor.NewHandler(editor.NewManager(coordinator, recordService))
	wsHandler := ws.NewHandler(coordinator, logger)

	record.RegisterValidations()

	// Initialize Gin router
	router := gin.Default()

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	// User routes
	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)
	router.DELETE("/logout", auth.AuthMiddleWare(), userHandler.Logout)
	router.GET("/profile", auth.AuthMiddleWare(), userHandler.GetProfile)
	router.GET("/users", auth.AuthMiddleWare(), userHandler.ListUsers)

	// CRM record routes
	router.GET("/customers", auth.AuthMiddleWare(), recordHandler.ListCustomers)
	router.POST("/customers", auth.AuthMiddleWare(), recordHandler.CreateCustomer)
	router.GET("/customers/:id", auth.AuthMiddleWare(), recordHandler.ShowCustomer)
	router.PUT("/customers/:id", auth.AuthMiddleWare(), recordHandler.UpdateCustomer)
	router.DELETE("/customers/:id", auth.AuthMiddleWare(), recordHandler.DeleteCustomer)
	router.GET("/deals", auth.AuthMiddleWare(), recordHandler.ListDeals)
	router.POST("/deals", auth.AuthMiddleWare(), recordHandler.CreateDeal)
	router.GET("/tickets", auth.AuthMiddleWare(), recordHandler.ListTickets)
	router.POST("/tickets", auth.AuthMiddleWare(), recordHandler.CreateTicket)
	router.GET("/tasks", auth.AuthMiddleWare(), recordHandler.ListTasks)
	router.POST("/tasks", auth.AuthMiddleWare(), recordHandler.CreateTask)

	// Collaboration routes
	router.GET("/collab/status", auth.AuthMiddleWare(), collabHandler.ShowStatus)
	router.GET("/collab/notifications", auth.AuthMiddleWare(), collabHandler.ListNotifications)
	router.GET("/collab/followed", auth.AuthMiddleWare(), collabHandler.ListFollowed)
	router.GET("/collab/records/:id/presence", auth.AuthMiddleWare(), collabHandler.ShowPresence)
	router.GET("/collab/records/:id/edits", auth.AuthMiddleWare(), collabHandler.ShowEdits)
	router.POST("/collab/records/:id/view", auth.AuthMiddleWare(), collabHandler.ViewRecord)
	router.POST("/collab/records/:id/edits", auth.AuthMiddleWare(), collabHandler.UpdateField)
	router.POST("/collab/records/:id/follow", auth.AuthMiddleWare(), collabHandler.Follow)
	router.DELETE("/collab/records/:id/follow", auth.AuthMiddleWare(), collabHandler.Unfollow)

	// Editor session routes (local dashboard)
	router.POST("/editor/records/:id/open", auth.AuthMiddleWare(), editorHandler.Open)
	router.POST("/editor/records/:id/change", auth.AuthMiddleWare(), editorHandler.Change)
	router.POST("/editor/records/:id/submit", auth.AuthMiddleWare(), editorHandler.Submit)
	router.GET("/editor/records/:id", auth.AuthMiddleWare(), editorHandler.Show)
	router.DELETE("/editor/records/:id", auth.AuthMiddleWare(), editorHandler.Close)

	// Real-time bridge
	router.GET("/ws", auth.AuthMiddleWare(), wsHandler.HandleConnection)

	// Demo-only remote edit injection
	if config.AppConfig.Environment == "development" {
		router.POST("/collab/simulate", collabHandler.SimulateEdit)
	}

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
