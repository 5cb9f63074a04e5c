package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulsebot/config"
	"pulsebot/cron"
	"pulsebot/handlers"
	"pulsebot/middleware"
	"pulsebot/routes"
	"pulsebot/services/booking"
	"pulsebot/services/calendar"
	"pulsebot/services/decision"
	"pulsebot/services/messaging"
	"pulsebot/services/tasks"
	"pulsebot/store"
	"pulsebot/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	if config.AppConfig.HighLevelAPIKey == "" {
		logger.Sugar().Fatal("main: HIGHLEVEL_API_KEY is not set")
	}

	location, err := time.LoadLocation(config.AppConfig.Timezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid timezone %q: %v", config.AppConfig.Timezone, err)
	}

	// Session store: in-memory for a single instance, Redis when the
	// webhook is served by more than one.
	var sessionStore store.SessionStore
	if config.AppConfig.UseRedisStore {
		sessionStore = store.NewRedisStore(
			utils.GetSessionCacheClient(),
			config.AppConfig.HistoryLimit,
			time.Duration(config.AppConfig.SessionTTLHours)*time.Hour,
		)
	} else {
		sessionStore = store.NewMemoryStore(config.AppConfig.HistoryLimit)
	}

	decisionClient := buildDecisionClient(logger.Sugar())
	decisionService := &decision.DefaultService{
		Client:       decisionClient,
		Interpreter:  decision.NewInterpreter(location),
		HistoryLimit: config.AppConfig.DecisionHistory,
	}

	highLevelCalendar := calendar.NewHighLevelCalendar(
		config.AppConfig.HighLevelAPIKey, location, config.CalendarTimeout())
	messageChannel := messaging.NewHighLevelChannel(
		config.AppConfig.HighLevelAPIKey,
		config.AppConfig.HighLevelLocationID,
		config.MessageTimeout(),
	)

	// Follow-up nudges ride on asynq over the queue Redis DB.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()
	followupScheduler := &tasks.Scheduler{Client: asynqClient}
	cron.InitFollowupWorker(sessionStore, messageChannel, followupScheduler)

	orchestrator := &booking.DefaultOrchestrator{
		Store:           sessionStore,
		Decisions:       decisionService,
		Slots:           highLevelCalendar,
		Sink:            highLevelCalendar,
		Channel:         messageChannel,
		Followups:       followupScheduler,
		CalendarID:      config.AppConfig.HighLevelCalendarID,
		LocationID:      config.AppConfig.HighLevelLocationID,
		Timezone:        location,
		DecisionTimeout: config.DecisionTimeout(),
		CalendarTimeout: config.CalendarTimeout(),
		MessageTimeout:  config.MessageTimeout(),
		FollowupDelay:   config.FollowupDelay(),
	}

	webhookHandler := handlers.NewWebhookHandler(orchestrator)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	handlerBundle := &handlers.HandlerBundle{
		IncomingWebhookHandler: webhookHandler.IncomingWebhookHandler,
		HealthGetHandler:       handlers.HealthGetHandler,
		HealthHeadHandler:      handlers.HealthHeadHandler,
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// buildDecisionClient selects the configured decision backend.
func buildDecisionClient(sugar *zap.SugaredLogger) decision.Client {
	switch config.AppConfig.DecisionBackend {
	case "gemini":
		if config.AppConfig.GeminiAPIKey == "" {
			sugar.Fatalf("main: GEMINI_API_KEY is not set")
		}
		client, err := decision.NewGeminiClient(
			config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
		if err != nil {
			sugar.Fatalf("main: failed to initialize gemini client: %v", err)
		}
		return client
	default:
		if config.AppConfig.OpenAIAPIKey == "" {
			sugar.Fatalf("main: OPENAI_API_KEY is not set")
		}
		return decision.NewOpenAIClient(
			config.AppConfig.OpenAIAPIKey,
			config.AppConfig.OpenAIModel,
			config.AppConfig.Temperature,
		)
	}
}
