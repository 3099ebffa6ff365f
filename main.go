package main

import (
	"fmt"
	"log"
	"os"
	"time"

	apirest "github.com/gatherly/server/api/rest"
	"github.com/gatherly/server/audit"
	"github.com/gatherly/server/cache"
	"github.com/gatherly/server/config"
	dbadapter "github.com/gatherly/server/db"
	mw "github.com/gatherly/server/middleware"
	"github.com/gatherly/server/model"
	"github.com/gatherly/server/scheduler"
	"github.com/gatherly/server/service"
	"github.com/gatherly/server/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.JWTSecret == "" {
		log.Fatal("security.jwt_secret must be set")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(nil)

	// ---- Cache ----
	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Object storage ----
	var store storage.ObjectStore
	if cfg.Storage.Endpoint != "" {
		ms, err := storage.NewMinioStore(cfg.Storage)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		store = ms
		logger.Info("Object storage initialized",
			zap.String("endpoint", cfg.Storage.Endpoint),
			zap.String("bucket", cfg.Storage.Bucket))
	} else {
		store = storage.Disabled{}
		logger.Warn("storage.endpoint is not set; photo uploads are disabled")
	}

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	retention := time.Duration(cfg.Server.ActivityRetentionDays) * 24 * time.Hour
	sched.AddTicker("activity_retention", 24*time.Hour, func() {
		if err := auditSvc.Purge(retention); err != nil {
			logger.Error("activity retention purge failed", zap.Error(err))
		}
	})

	// ---- Services ----
	svc := service.New(db, logger)
	photoSvc := service.NewPhotoService(db, store, cfg.Uploads.MaxPhotoBytes, logger)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	corsCfg := cors.DefaultConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Security.AllowedOrigins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", mw.TraceIDHeader)
	r.Use(cors.New(corsCfg))

	if cfg.Server.Debug {
		pprof.Register(r)
	}

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security, logger)
	userH := apirest.NewUserHandler(db, c, svc, cfg.Security, logger)
	eventH := apirest.NewEventHandler(svc, cfg.Uploads.FeedPageSize, cfg.Uploads.MobileFeedLimit, logger)
	attendeeH := apirest.NewAttendeeHandler(svc, auditSvc, logger)
	rsvpH := apirest.NewRSVPHandler(svc, auditSvc, logger)
	photoH := apirest.NewPhotoHandler(photoSvc, auditSvc, logger)
	friendH := apirest.NewFriendHandler(svc, auditSvc, logger)

	oidcH, err := apirest.NewOIDCHandler(db, c, cfg.Security, cfg.OIDC, logger)
	if err != nil {
		log.Fatalf("oidc: %v", err)
	}

	auth := mw.Auth(cfg.Security, c)
	optAuth := mw.OptionalAuth(cfg.Security, c)
	mobileAuth := mw.MobileAuth(cfg.Security)

	api := r.Group("/api")
	{
		usersG := api.Group("/users")
		usersG.POST("", userH.Register)
		usersG.GET("/me", auth, userH.Me)
		usersG.PUT("", auth, userH.Update)
		usersG.DELETE("", auth, userH.Delete)
		usersG.GET("/profile/:username", optAuth, userH.Profile)

		authG := api.Group("/auth")
		authG.POST("/login", authH.Login)
		authG.POST("/logout", auth, authH.Logout)
		authG.POST("/refresh", auth, authH.Refresh)
		if oidcH != nil {
			authG.GET("/oidc/login", oidcH.Login)
			authG.GET("/oidc/callback", oidcH.Callback)
		}

		eventsG := api.Group("/events")
		eventsG.GET("/mobile", mobileAuth, eventH.MobileFeed)
		// Attendee and photo listings are readable without a session.
		eventsG.GET("/:id/attendees", attendeeH.List)
		eventsG.GET("/:id/photos", photoH.List)
		eventsG.Use(auth)
		eventsG.POST("", eventH.Create)
		eventsG.GET("", eventH.Feed)
		eventsG.GET("/:id", eventH.Get)
		eventsG.PUT("/:id", eventH.Update)
		eventsG.DELETE("/:id", eventH.Delete)
		eventsG.POST("/:id/attendees", attendeeH.Invite)
		eventsG.PATCH("/:id/attendees", attendeeH.UpdateRSVP)
		eventsG.GET("/:id/rsvp", rsvpH.Status)
		eventsG.POST("/:id/rsvp", rsvpH.Set)
		eventsG.DELETE("/:id/rsvp", rsvpH.Cancel)
		eventsG.POST("/:id/photos", photoH.Upload)

		api.GET("/user/invitations", auth, attendeeH.Invitations)

		friendsG := api.Group("/friends")
		friendsG.Use(auth)
		friendsG.POST("/requests", friendH.SendRequest)
		friendsG.GET("/requests", friendH.ListRequests)
		friendsG.POST("/requests/:id/accept", friendH.Accept)
		friendsG.POST("/requests/:id/decline", friendH.Decline)
		friendsG.GET("", friendH.List)
		friendsG.DELETE("/:id", friendH.Remove)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
