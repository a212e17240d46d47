package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gitlytics/gitlytics/cache"
	"github.com/gitlytics/gitlytics/config"
	"github.com/gitlytics/gitlytics/controller"
	"github.com/gitlytics/gitlytics/logger"
	"github.com/gitlytics/gitlytics/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	responseCacheTTL = time.Hour
	anonymousQuota   = 60
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("unable to load configuration")
	}

	// configure logger
	logger.Setup(*cfg)

	// setup github client on top of the caching transport
	// successful GET responses are reused for one hour keyed by URL
	responseCache := cache.NewStore(responseCacheTTL)
	httpClient := &http.Client{Transport: cache.NewTransport(responseCache, nil)}
	githubClient := github.NewClient(httpClient)

	if cfg.Github.Token != "" {
		log.Debug("will setup github client with authorization token")
		githubClient = githubClient.WithAuthToken(cfg.Github.Token)
	}

	// setup local rate limiter
	// execute first request to github to fetch current rate limits
	// without network fall back to the anonymous quota instead of refusing to boot
	log.Debug("loading current rate limit from github")
	quota := anonymousQuota
	consumed := 0

	if rateLimits, _, err := githubClient.RateLimit.Get(context.Background()); err != nil {
		log.WithError(err).Warning("unable to load current github rate limits, falling back to the anonymous quota")
	} else {
		quota = rateLimits.Core.Limit
		consumed = rateLimits.Core.Limit - rateLimits.Core.Remaining
	}

	log.WithFields(log.Fields{
		"totalAvailable":    quota,
		"alreadyConsumed":   consumed,
	}).Debug("will setup local rate limiter with rate limits infos from github")

	// consume X tokens according to the number of remaining tokens
	// this help us to have a right rate limiter even if external requests are made
	rateLimiter := rate.NewLimiter(rate.Every(time.Hour), quota)

	if consumed > 0 && !rateLimiter.AllowN(time.Now(), consumed) {
		log.Warning("unable to sync the github rate limiter with the consumed quota")
	}

	// setup handlers and services
	githubService := service.NewGithubService(*cfg, githubClient, rateLimiter)
	analyticsService := service.NewAnalyticsService(*cfg, githubService, rateLimiter)
	apiController := controller.NewAPIController(*cfg, analyticsService)

	// setup server and define all routes
	if cfg.API.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	server := &http.Server{
		Addr:    ":" + cfg.API.ListenPort,
		Handler: router,
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type, Content-Length, Accept-Encoding, Host, accept, Origin, Cache-Control, X-Requested-With"},
			MaxAge:       12 * time.Hour,
		}),
	)

	api := router.Group("")
	{
		api.GET("/users/:username/analytics", apiController.GetUserAnalytics)
	}

	// start with configuration
	go func() {
		log.Info("server listening on port " + cfg.API.ListenPort)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("error while starting server")
		}

	}()

	// create context with 15 seconds timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// wait for interrupt signal to gracefully shut down the server with a timeout of 15 seconds.
	// kill default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SIGINT, SIGTERM received, will shut down server ...")

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	} else {
		log.Info("Application stopped gracefully !")
	}
}
