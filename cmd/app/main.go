package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	cfgpkg "github.com/local/lessonplanner/internal/config"
	"github.com/local/lessonplanner/internal/conversation"
	"github.com/local/lessonplanner/internal/filetype"
	"github.com/local/lessonplanner/internal/limiter"
	logpkg "github.com/local/lessonplanner/internal/logger"
	"github.com/local/lessonplanner/internal/metrics"
	"github.com/local/lessonplanner/internal/normalize"
	"github.com/local/lessonplanner/internal/orchestrator"
	"github.com/local/lessonplanner/internal/pdftext"
	"github.com/local/lessonplanner/internal/pipeline"
	"github.com/local/lessonplanner/internal/session"
	"github.com/local/lessonplanner/internal/statuscheck"
	"github.com/local/lessonplanner/internal/storage"
	"github.com/local/lessonplanner/internal/store"
	"github.com/local/lessonplanner/internal/summarize"
	"github.com/local/lessonplanner/internal/telegram"
	"github.com/local/lessonplanner/internal/websearch"
)

const uploadMaxAge = 24 * time.Hour

func main() {
	cfg := cfgpkg.FromEnv()

	// Init logging
	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tg, err := telegram.NewClient(telegram.Options{
		Token:           cfg.Telegram.Token,
		APIBase:         cfg.Telegram.APIBase,
		Timeout:         cfg.Telegram.Timeout,
		DownloadTimeout: cfg.Telegram.DownloadTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init telegram client")
	}

	// Templates
	var (
		s3c      *storage.S3Client
		objects  storage.ObjectStore
		uploader storage.Uploader
		s3Ping   statuscheck.Pinger
	)
	if cfg.UsesS3() {
		s3c, err = storage.NewS3Client(ctx, storage.S3Options{
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Password:        cfg.Template.S3Password,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init s3 client")
		}
		objects, uploader = s3c, s3c
		bucket := cfg.Storage.Bucket
		if bucket == "" {
			bucket = cfg.Template.UploadBucket
		}
		if bucket != "" {
			s3Ping = statuscheck.PingFunc(func(ctx context.Context) error { return s3c.Ping(ctx, bucket) })
		}
	}
	resolver := storage.NewResolver(objects, nil, cfg.Template.FetchTimeout)
	uploadBucket := cfg.Template.UploadBucket
	if uploader == nil {
		uploadBucket = ""
	}
	uploads := storage.NewUploads(cfg.Template.UploadDir, uploader, uploadBucket)
	if !resolver.Exists(ctx, cfg.Template.DefaultPath) {
		log.Warn().Str("template", cfg.Template.DefaultPath).Msg("default template not found; generation needs an uploaded template")
	}

	// Sessions
	var (
		sessions  session.Store
		redisPing statuscheck.Pinger
	)
	switch cfg.Session.Backend {
	case "redis":
		rs, err := store.NewRedisSessions(cfg.Session.RedisURL, cfg.Session.TTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rs.Close()
		sessions, redisPing = rs, rs
	default:
		sessions = session.NewMemoryStore(cfg.Session.TTL)
	}

	// Pipeline
	opener, err := pdftext.OpenerFor(cfg.PDF.Backend)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid pdf backend")
	}
	web := websearch.New(websearch.Options{
		SearchURL:     cfg.Web.SearchURL,
		UserAgent:     cfg.Web.UserAgent,
		FetchTimeout:  cfg.Web.FetchTimeout,
		SearchTimeout: cfg.Web.SearchTimeout,
		MaxChars:      cfg.Pipeline.MaxChars,
	})
	norm := normalize.New(pdftext.NewExtractor(opener, cfg.PDF.Validate), web, normalize.Options{
		MaxChars:    cfg.Pipeline.MaxChars,
		MaxSources:  cfg.Web.MaxSources,
		Concurrency: cfg.Web.Concurrency,
	})
	gen := pipeline.New(norm, summarize.New(summarize.Options{}), resolver, pipeline.Options{
		DefaultTemplate: cfg.Template.DefaultPath,
		HeadlineCount:   cfg.Pipeline.HeadlineSentences,
		ReplaceAll:      cfg.Template.ReplaceAll,
	})

	detector := filetype.New()
	locks := limiter.NewKeyed()
	bot := conversation.New(conversation.Deps{
		Transport: tg,
		Sessions:  sessions,
		Generator: gen,
		Searcher:  web,
		Templates: storage.NewTemplates(resolver, uploads),
		Detector:  detector,
		Locks:     locks,
	}, conversation.Options{
		AdminID:           cfg.Admin.ID,
		DefaultTarget:     cfg.Admin.DefaultTarget,
		LongTextThreshold: cfg.Pipeline.LongTextThreshold,
		SearchResults:     cfg.Web.SearchResults,
	})

	checker := statuscheck.New(statuscheck.Options{
		Redis: redisPing,
		S3:    s3Ping,
		Telegram: statuscheck.PingFunc(func(ctx context.Context) error {
			_, err := tg.GetMe(ctx)
			return err
		}),
		PDFBackend: cfg.PDF.Backend,
		InFlight:   locks.Len,
	})

	// Orchestrator HTTP server
	orch := orchestrator.New(orchestrator.Dependencies{
		Events:         bot,
		Generator:      gen,
		Status:         checker,
		Detector:       detector,
		WebhookSecret:  cfg.Telegram.WebhookSecret,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	})
	mux := http.NewServeMux()
	orch.RegisterRoutes(mux)

	if cfg.Telegram.WebhookURL != "" {
		if err := tg.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			log.Error().Err(err).Msg("failed to register webhook")
		} else {
			log.Info().Str("url", cfg.Telegram.WebhookURL).Msg("webhook registered")
		}
	}

	go cleanupLoop(ctx, uploads)

	srv := &http.Server{Addr: ":" + cfg.HTTP.Port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info().Msgf("HTTP server listening on :%s", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	fmt.Println("shutdown complete")
}

// cleanupLoop drops stale locally stored template uploads every hour.
func cleanupLoop(ctx context.Context, uploads *storage.Uploads) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			uploads.Cleanup(uploadMaxAge)
		}
	}
}
