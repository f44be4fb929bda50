package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/signwave/sign-video-service/internal/catalog"
	"github.com/signwave/sign-video-service/internal/cleanup"
	"github.com/signwave/sign-video-service/internal/config"
	"github.com/signwave/sign-video-service/internal/fetcher"
	"github.com/signwave/sign-video-service/internal/handlers"
	"github.com/signwave/sign-video-service/internal/resolver"
	"github.com/signwave/sign-video-service/internal/storage"
	"github.com/signwave/sign-video-service/internal/store"
	"github.com/signwave/sign-video-service/internal/video"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ensure directories exist
	if err := cleanup.EnsureDir(cfg.Storage.TempDir); err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}
	if cfg.Storage.Database != "" {
		if err := cleanup.EnsureDir(filepath.Dir(cfg.Storage.Database)); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
	}

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	log.Println("Initializing components...")
	ctx := context.Background()

	// Firebase Storage bucket (optional - service degrades to 503 without it)
	var clipStore *store.FirebaseStore
	clipStore, err = store.NewFirebaseStore(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.Bucket)
	if err != nil {
		log.Printf("Error initializing Firebase: %v", err)
		clipStore = nil
	} else {
		log.Println("Firebase initialized successfully.")
	}

	// Gemini model (optional - unresolved words are skipped without it)
	var model resolver.TextModel
	geminiModel, err := resolver.NewGeminiModel(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Printf("Error configuring Gemini: %v", err)
	} else {
		model = geminiModel
		log.Println("Gemini configured.")
	}

	// Catalog: loaded once at startup behind the sync.Once barrier so
	// concurrent first requests never race a bucket listing
	var lister catalog.Lister
	var objectStore fetcher.ObjectStore
	if clipStore != nil {
		lister = clipStore
		objectStore = clipStore
	}
	cat := catalog.New(lister, cfg.Firebase.DictionaryPrefix, cfg.Firebase.ClipExtension)
	cat.Load(ctx)

	// Video processor and per-word clip pipeline
	processor := video.NewProcessor(cfg.Storage.TempDir, cfg.Video.Width, cfg.Video.Height, cfg.Video.FPS)
	clipFetcher := fetcher.New(objectStore, processor, cfg.Storage.TempDir,
		cfg.Firebase.DictionaryPrefix, cfg.Firebase.ClipExtension)

	// Generation history database (optional)
	var db *storage.MetadataDB
	if cfg.Storage.Database != "" {
		db, err = storage.NewMetadataDB(cfg.Storage.Database)
		if err != nil {
			log.Printf("WARNING: history database not available: %v", err)
			db = nil
		} else {
			defer db.Close()
		}
	}

	// Cleanup scheduler
	cleanupScheduler := cleanup.NewScheduler(
		cfg.Storage.TempDir,
		cfg.Cleanup.IntervalMinutes,
		cfg.Cleanup.MaxAgeHours,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Initialize handlers
	wordResolver := resolver.New(model, cat)
	generateHandler := handlers.NewGenerateHandler(cat, wordResolver, clipFetcher, processor, db)

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":        "healthy",
			"storage":       clipStore != nil,
			"model":         model != nil,
			"catalog_ready": cat.Ready(),
			"words":         len(cat.Words()),
		})
	})

	app.Get("/generate_video", generateHandler.Handle)

	// In-memory catalog view
	app.Get("/words", func(c *fiber.Ctx) error {
		words := cat.Words()
		return c.JSON(fiber.Map{
			"count": len(words),
			"words": words,
		})
	})

	// Generation history
	app.Get("/generations", func(c *fiber.Ctx) error {
		if db == nil {
			return c.Status(503).JSON(fiber.Map{"error": "History database not available"})
		}
		records, err := db.ListGenerations(50)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(records)
	})

	app.Get("/generations/:id", func(c *fiber.Ctx) error {
		if db == nil {
			return c.Status(503).JSON(fiber.Map{"error": "History database not available"})
		}
		record, err := db.GetGeneration(c.Params("id"))
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "Generation not found"})
		}
		return c.JSON(record)
	})

	// Get server logs
	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   GET /generate_video?sentence=... - Generate merged sign video")
	log.Println("   GET /words            - List catalog words")
	log.Println("   GET /generations      - List generation history")
	log.Println("   GET /generations/:id  - Get one generation record")
	log.Println("   GET /logs             - View server logs")
	log.Println("   GET /health           - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}
