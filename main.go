package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tcf-service/internal/auth"
	"tcf-service/internal/config"
	"tcf-service/internal/db"
	"tcf-service/internal/event"
	"tcf-service/internal/gate"
	"tcf-service/internal/handlers"
	"tcf-service/internal/repository"
	"tcf-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	gin.SetMode(cfg.GinMode)
	db.InitMongo(cfg.MongoURI)
	defer db.Close()

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQURI != "" && cfg.RabbitMQExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, result events will not be published")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	database := db.Client.Database(cfg.MongoDatabase)

	// Questions
	questionRepo := repository.NewQuestionRepository(database)
	questionService := service.NewQuestionService(questionRepo)
	questionHandler := handlers.NewQuestionHandler(questionService)

	if err := questionService.SeedFromFile(context.Background(), cfg.SeedFile); err != nil {
		log.Fatalf("Failed to seed question bank: %v", err)
	}

	// Results
	resultRepo := repository.NewResultRepository(database)
	resultService := service.NewResultService(resultRepo, publisher)
	resultHandler := handlers.NewResultHandler(resultService)

	// Sessions behind the cooldown gate
	userRepo := repository.NewUserRepository(database)
	accessGate := gate.NewGate(rdb, userRepo)
	sessionService := service.NewSessionService(questionRepo, resultService, accessGate)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	public := r.Group("/public/tcf")
	{
		public.GET("/tests", sessionHandler.ListTests)
		public.GET("/questions", questionHandler.ListQuestions)
		public.GET("/questions/:id", questionHandler.GetQuestion)
	}

	protected := r.Group("/protected/tcf")
	protected.Use(auth.Middleware(cfg.JWTSecret))
	{
		// Question administration needs the admin claim on top of a valid
		// token.
		admin := protected.Group("/questions", auth.RequireAdmin())
		{
			admin.POST("", questionHandler.CreateQuestion)
			admin.POST("/bulk", questionHandler.ImportQuestions)
			admin.PUT("/:id", questionHandler.UpdateQuestion)
			admin.DELETE("/:id", questionHandler.DeleteQuestion)
		}

		protected.POST("/sessions", sessionHandler.StartSession)
		protected.GET("/sessions/:token", sessionHandler.GetSession)
		protected.POST("/sessions/:token/select", sessionHandler.SelectOption)
		protected.POST("/sessions/:token/confirm", sessionHandler.ConfirmAnswer)
		protected.POST("/sessions/:token/jump", sessionHandler.JumpTo)
		protected.POST("/sessions/:token/audio-ended", sessionHandler.AudioEnded)
		protected.POST("/sessions/:token/finish", sessionHandler.FinishSession)
		protected.POST("/sessions/:token/restart", sessionHandler.RestartSession)

		protected.GET("/results", resultHandler.ListResults)
		protected.GET("/results/overview", resultHandler.GetOverview)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("%s listening on :%s", cfg.ServiceName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")

	// Finish running sessions so their results reach the database.
	sessionService.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
