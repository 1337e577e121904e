// Package app assembles the pipeline and its collaborators from configuration.
package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/timmy/viralpost/internal/config"
	"github.com/timmy/viralpost/internal/logger"
	"github.com/timmy/viralpost/internal/repository"
	"github.com/timmy/viralpost/internal/service"
	"github.com/timmy/viralpost/internal/session"
	"github.com/timmy/viralpost/internal/storage"
)

// App holds the wired pipeline and the resources that must be released on exit.
type App struct {
	Pipeline *service.Pipeline
	Sessions session.Store
	// Repository is set when sessions are kept in the database.
	Repository *repository.SessionRepository

	db *gorm.DB
}

// bucketEnsurer is implemented by stores that can create their bucket.
type bucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}

// New wires every service from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	objects, err := storage.NewStorage(&storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if b, ok := objects.(bucketEnsurer); ok {
		if err := b.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure storage bucket: %w", err)
		}
	}
	publisher := storage.NewPublisher(objects, cfg.Storage.Prefix)

	a := &App{}
	switch cfg.Session.Store {
	case "database":
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.db = db
		a.Repository = repository.NewSessionRepository(db)
		a.Sessions = a.Repository
	default:
		a.Sessions = session.NewMemoryStore()
	}

	chat := service.NewChatClient(&service.ChatConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	})
	images := service.NewOpenAIImageClient(&service.ImageClientConfig{
		APIKey:  cfg.Image.APIKey,
		BaseURL: cfg.Image.BaseURL,
		Timeout: cfg.Image.Timeout,
	})
	hashtags := service.NewHashtagScraper(&service.HashtagConfig{
		BaseURL:   cfg.Hashtags.BaseURL,
		UserAgent: cfg.Hashtags.UserAgent,
		Timeout:   cfg.Hashtags.Timeout,
		CacheSize: cfg.Hashtags.CacheSize,
		CacheTTL:  cfg.Hashtags.CacheTTL,
	})

	timeout := cfg.Pipeline.CallTimeout
	models := cfg.LLM.Models

	a.Pipeline = service.NewPipeline(service.PipelineDeps{
		Style:      service.NewStyleAnalyzer(chat, models.Style, timeout),
		Variations: service.NewVariationGenerator(chat, models.Variation, timeout, cfg.Pipeline.VariationConcurrency),
		Selector:   service.NewSelector(chat, models.Selection, timeout),
		Metadata: service.NewMetadataEnricher(chat, models.Metadata, timeout, hashtags,
			cfg.Pipeline.Platform, cfg.Pipeline.Timezone, nil),
		Matcher: service.NewTemplateMatcher(chat, models.Features, models.Arbitration, timeout, nil),
		Director: service.NewImageDirector(images, publisher, service.ImageDirectorConfig{
			CharacterModel: cfg.Image.CharacterModel,
			ActionModel:    cfg.Image.Model,
			Size:           cfg.Image.Size,
			Timeout:        cfg.Image.Timeout,
			ScratchRoot:    cfg.Pipeline.ScratchDir,
		}),
		Publisher: publisher,
		Store:     a.Sessions,
	})

	logger.With(logger.Fields{
		"storage":       cfg.Storage.Type,
		"session_store": cfg.Session.Store,
	}).Info(ctx, "Pipeline wired")

	return a, nil
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
