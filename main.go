package main

import (
	"log"
	"time"

	"agency-hub/config"
	"agency-hub/database"
	agenciesapi "agency-hub/internal/api/agencies"
	briefingapi "agency-hub/internal/api/briefing"
	financeapi "agency-hub/internal/api/finance"
	invitationsapi "agency-hub/internal/api/invitations"
	notificationsapi "agency-hub/internal/api/notifications"
	portalapi "agency-hub/internal/api/portal"
	projectsapi "agency-hub/internal/api/projects"
	"agency-hub/internal/api/realtime"
	routes "agency-hub/internal/app/http"
	"agency-hub/internal/briefing"
	"agency-hub/internal/feed"
	"agency-hub/internal/state"
	"agency-hub/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Multi-node deployments point NATS_URL at a shared broker; without it
	// change signals stay in-process.
	var changeFeed feed.Feed
	if config.NATS_URL != "" {
		nats, err := feed.ConnectNATS(config.NATS_URL, logger)
		if err != nil {
			logger.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer nats.Close()
		changeFeed = nats
	} else {
		changeFeed = feed.NewBroker()
	}

	dataStore := store.New(database.DB, changeFeed)
	sessions := state.NewManager()

	var generator briefing.Generator
	if config.OPENAI_API_KEY != "" {
		llm, err := briefing.NewLLM(config.OPENAI_API_KEY, config.OPENAI_MODEL, logger)
		if err != nil {
			logger.Fatal("failed to create briefing generator", zap.Error(err))
		}
		generator = llm
	} else {
		logger.Warn("OPENAI_API_KEY not set, using mock briefing generator")
		generator = briefing.NewMock()
	}

	agenciesapi.Configure(changeFeed)
	invitationsapi.Configure(changeFeed)
	projectsapi.Configure(dataStore, sessions, generator)
	financeapi.Configure(dataStore, sessions)
	notificationsapi.Configure(dataStore, sessions)
	briefingapi.Configure(generator)
	portalapi.Configure(dataStore, sessions)
	realtime.Configure(dataStore, changeFeed, sessions, logger)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r)

	r.Run(":" + config.PORT)
}
