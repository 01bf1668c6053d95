package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider/chatprovider"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider/smsprovider"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/cache"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/cache/memory"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/config"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/handler"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/lock"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/rapport"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/approval"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/invite"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/orchestrator"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/phoneresolver"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/prompt"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/retriever"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/settings"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/task"
	"github.com/MaqroSolutions/Dealerships-sub000/pkg/logger"
	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Server owns the router and the process-wide background loops it starts.
type Server struct {
	cfg    *config.Config
	router *mux.Router
	tasks  *task.Manager
}

// NewServer wires every service the gateway needs and registers the
// Control API + provider webhook routes on a fresh router.
func NewServer(cfg *config.Config) (*Server, error) {
	if _, err := logger.Init(os.Getenv("LOG_ENV")); err != nil {
		logger.Base().Error("failed to initialize zap logger, falling back to std log")
	}

	repo, err := repository.NewRepositoryManager(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository manager: %w", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	memStore := memory.NewStore(redisClient)

	dealershipCache := cache.NewDealershipCache()
	if dealerships, err := repo.Dealerships().List(context.Background()); err != nil {
		logger.Base().Warn("failed to preload dealership cache", zap.Error(err))
	} else if err := dealershipCache.RefreshAsync(dealerships); err != nil {
		logger.Base().Warn("failed to refresh dealership cache", zap.Error(err))
	}

	locker := lock.NewLeadLocker()
	phoneResolver := phoneresolver.New(repo, dealershipCache, cfg.DefaultDealershipID)

	embedder := retriever.NewOpenAIEmbedder(cfg.EmbeddingAPIKey)
	vehicleRetriever := retriever.New(repo, embedder)

	llmClient := prompt.NewClient(cfg.LLMAPIKey, "claude-sonnet-4-5")
	promptBuilder := prompt.New(llmClient)

	approvals := approval.New(repo)
	settingsResolver := settings.New(repo)
	invites := invite.New(repo)
	rapportLib := rapport.New(time.Now().UnixNano())

	smsClient := smsprovider.NewClient(cfg.SMSProviderAPIKey, cfg.SMSProviderAPISecret, cfg.SMSWebhookSecret)
	chatClient := chatprovider.NewClient(cfg.LLMBaseURL, cfg.ChatProviderAPIKey, cfg.ChatWebhookSecret)

	providers := map[string]provider.Sender{
		"sms":  smsClient,
		"chat": chatClient,
	}

	tasks := task.New()
	task.RegisterEmbeddingHandlers(tasks, repo, embedder)
	task.RegisterDelayedSendHandler(tasks, providers)

	orch := orchestrator.New(
		repo, memStore, locker, vehicleRetriever, promptBuilder,
		approvals, settingsResolver, rapportLib, providers, "Maqro", tasks,
	)

	router := mux.NewRouter()
	handlerManager := handler.NewHandlerManager(handler.Deps{
		Repo:               repo,
		Orchestrator:       orch,
		Retriever:          vehicleRetriever,
		Settings:           settingsResolver,
		Invites:            invites,
		Tasks:              tasks,
		PhoneResolver:      phoneResolver,
		SMS:                smsClient,
		Chat:               chatClient,
		JWTSigningSecret:   cfg.JWTSigningSecret,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	handlerManager.SetupAllRoutes(router)

	return &Server{cfg: cfg, router: router, tasks: tasks}, nil
}

// Start runs the background task GC loop and serves HTTP until the process
// is killed.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.tasks.StartGCLoop(ctx, 1*time.Hour)

	addr := fmt.Sprintf(":%s", s.cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Base().Info("starting server", zap.String("addr", addr))
	return server.ListenAndServe()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("info: .env file not found or skipped (expected in production): %v", err)
	}

	cfg := config.LoadFromEnv()

	server, err := NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	logger.Base().Info("server initialized successfully",
		zap.String("port", cfg.Port),
		zap.String("instance_id", cfg.InstanceID))

	if err := server.Start(); err != nil {
		log.Fatalf("server failed to start: %v", err)
	}
}
