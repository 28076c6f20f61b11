package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/makeasinger/fretboard/internal/auth"
	"github.com/makeasinger/fretboard/internal/client"
	"github.com/makeasinger/fretboard/internal/config"
	"github.com/makeasinger/fretboard/internal/server"
	"github.com/makeasinger/fretboard/internal/service"
	ws "github.com/makeasinger/fretboard/internal/websocket"
	"github.com/makeasinger/fretboard/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	hub := ws.NewHub()
	go hub.Run(ctx)

	// R2 is optional; exports fall back to in-process storage
	var storage client.StorageClient
	var files *client.MemoryStorage
	r2Configured := false
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		r2Client, err := client.NewR2Client(ctx, &cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 client not initialized: %v", err)
		} else {
			storage = r2Client
			r2Configured = true
		}
	}
	if storage == nil {
		log.Println("Info: R2 storage not configured, serving exports from memory")
		files = client.NewMemoryStorage(cfg.Server.PublicURL+"/files", service.ExportTTL)
		storage = files
	}

	// OIDC is optional; legacy HMAC tokens are always accepted when a secret is set
	var verifier auth.TokenVerifier
	if cfg.OIDC.Issuer != "" {
		jwksVerifier, err := auth.NewJWKSVerifier(ctx, &cfg.OIDC)
		if err != nil {
			log.Printf("Warning: JWKS verifier not initialized: %v", err)
		} else {
			verifier = jwksVerifier
			defer jwksVerifier.Close()
		}
	}
	authenticator := auth.NewAuthenticator(verifier, cfg.JWT.Secret)

	diagramService := service.NewDiagramService()
	exportService := service.NewExportService(diagramService, storage)
	songbookService := service.NewSongbookService(redisClient, asynqClient)

	app := server.New(server.Deps{
		Config:        cfg,
		Redis:         redisClient,
		Authenticator: authenticator,
		Diagrams:      diagramService,
		Exports:       exportService,
		Songbooks:     songbookService,
		Hub:           hub,
		Files:         files,
		Services: map[string]bool{
			"r2":   r2Configured,
			"oidc": verifier != nil,
			"auth": verifier != nil || cfg.JWT.Secret != "",
		},
		AccessLog: true,
	})

	workerServer := newWorkerServer(cfg, redisOpt)
	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeSongbook,
		worker.NewSongbookWorker(songbookService, storage, hub, cfg.Songbook.Concurrency).ProcessTask)
	go func() {
		if err := workerServer.Run(mux); err != nil {
			log.Printf("Asynq worker error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		workerServer.Shutdown()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

func newWorkerServer(cfg *config.Config, redisOpt asynq.RedisClientOpt) *asynq.Server {
	logLevel := asynq.InfoLevel
	switch strings.ToLower(cfg.Server.LogLevel) {
	case "debug":
		logLevel = asynq.DebugLevel
	case "warn":
		logLevel = asynq.WarnLevel
	case "error":
		logLevel = asynq.ErrorLevel
	}

	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Songbook.WorkerConcurrency,
		Queues: map[string]int{
			service.QueueSongbook: 1,
		},
		LogLevel: logLevel,
	})
}
