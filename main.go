package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hacker-feed/domain/repository"
	"hacker-feed/infrastructure/cache"
	"hacker-feed/infrastructure/clients/hackernews"
	youtubeclient "hacker-feed/infrastructure/clients/youtube"
	"hacker-feed/infrastructure/configuration"
	"hacker-feed/infrastructure/logger"
	"hacker-feed/infrastructure/scraper"
	httpHandler "hacker-feed/interfaces/http"
	"hacker-feed/server"
	"hacker-feed/usecase"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	redisClient := InitiateCache(ctx)
	feedCache := cache.NewFeedCache(redisClient)
	if redisClient != nil {
		logger.GetLogger().Info("Redis client initialized successfully.")
	} else {
		logger.GetLogger().Warn("Cache not available - every request recomputes")
	}

	hnClient := hackernews.NewClient(
		configuration.C.HackerNews.Host,
		time.Duration(configuration.C.HackerNews.TimeoutSeconds)*time.Second,
	)

	// YouTube Data API is optional; without a key video descriptions
	// come from the scraped page instead.
	var youtubeClient repository.IYouTube
	if key := configuration.C.YouTube.APIKey; key != "" {
		var err error
		youtubeClient, err = youtubeclient.NewYouTubeClient(ctx, key)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("YouTube client not available - continuing without API descriptions")
			youtubeClient = nil
		}
	} else {
		logger.GetLogger().Info("YouTube API key not configured - video descriptions will come from page scrapes")
	}

	sanitizer := scraper.NewSanitizer()
	extractor := scraper.NewExtractor(scraper.ExtractorOptions{
		UserAgent:    configuration.C.Scraper.UserAgent,
		Timeout:      time.Duration(configuration.C.Scraper.FetchTimeoutSeconds) * time.Second,
		MaxRedirects: configuration.C.Scraper.MaxRedirects,
	}, sanitizer, youtubeClient)
	faviconResolver := scraper.NewFaviconResolver(scraper.ResolverOptions{
		UserAgent:    configuration.C.Scraper.UserAgent,
		ProbeTimeout: time.Duration(configuration.C.Scraper.ProbeTimeoutSeconds) * time.Second,
		PageTimeout:  time.Duration(configuration.C.Scraper.FetchTimeoutSeconds) * time.Second,
		CacheTTL:     time.Duration(configuration.C.Feed.FaviconTTLHours) * time.Hour,
	}, feedCache)

	storyUsecase := usecase.NewStoryUsecase(hnClient, feedCache, extractor, faviconResolver, sanitizer, usecase.Config{
		PageSize:      configuration.C.Feed.PageSize,
		BatchSize:     configuration.C.Feed.BatchSize,
		BatchDelay:    time.Duration(configuration.C.Feed.BatchDelayMs) * time.Millisecond,
		MetadataLimit: configuration.C.Feed.MetadataLimit,
		ListTTL:       time.Duration(configuration.C.Feed.ListTTLMinutes) * time.Minute,
		StoryTTL:      time.Duration(configuration.C.Feed.StoryTTLMinutes) * time.Minute,
		MetadataTTL:   time.Duration(configuration.C.Feed.MetadataTTLHours) * time.Hour,
		PageTTL:       time.Duration(configuration.C.Feed.PageTTLSeconds) * time.Second,
	})

	storyHandler := httpHandler.NewStoryHandler(storyUsecase)
	router := server.InitiateRouter(storyHandler)

	port := app.Port
	logger.GetLogger().WithField("port", port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateCache connects to Redis, preferring a REDIS_URL connection
// string. Returns nil when the store is unreachable; the service then
// recomputes on every request instead of failing.
func InitiateCache(ctx context.Context) *redis.Client {
	cfg := configuration.C.RedisClient
	if cfg.URL != "" {
		client, err := cache.NewCacheFromURL(ctx, cfg.URL)
		if err == nil {
			return client
		}
		return nil
	}
	client, err := cache.NewCache(ctx, fmt.Sprintf("%s:%s", cfg.Host, cfg.Port), cfg.Username, cfg.Password)
	if err != nil {
		return nil
	}
	return client
}
