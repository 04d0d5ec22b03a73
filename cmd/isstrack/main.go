package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/access"
	"github.com/jsmuster/isstrack/internal/application/activity"
	"github.com/jsmuster/isstrack/internal/application/auth"
	"github.com/jsmuster/isstrack/internal/application/comment"
	"github.com/jsmuster/isstrack/internal/application/issue"
	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/application/project"
	"github.com/jsmuster/isstrack/internal/application/tag"
	"github.com/jsmuster/isstrack/internal/config"
	infraauth "github.com/jsmuster/isstrack/internal/infrastructure/auth"
	"github.com/jsmuster/isstrack/internal/infrastructure/broadcast"
	httprouter "github.com/jsmuster/isstrack/internal/infrastructure/http"
	"github.com/jsmuster/isstrack/internal/infrastructure/http/handlers"
	"github.com/jsmuster/isstrack/internal/infrastructure/http/middleware"
	"github.com/jsmuster/isstrack/internal/infrastructure/persistence/postgres"
	"github.com/jsmuster/isstrack/internal/infrastructure/queue"
	"github.com/jsmuster/isstrack/internal/infrastructure/security"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("apply schema")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	db := postgres.NewDB(pool)
	userRepo := postgres.NewUserRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	issueRepo := postgres.NewIssueRepository(db)
	tagRepo := postgres.NewTagRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	activityRepo := postgres.NewActivityRepository(db)
	resetRepo := postgres.NewPasswordResetRepository(db)

	var dispatcher ports.EventDispatcher = broadcast.NoopDispatcher{}
	var taskEnqueuer ports.TaskEnqueuer = queue.NewNoopEnqueuer()
	var asynqWorker *queue.Worker
	var scheduler *asynq.Scheduler
	if redisClient != nil {
		dispatcher = broadcast.NewBroadcaster(broadcast.NewRedisPublisher(redisClient, log), log)

		redisOpt, _ := redis.ParseURL(cfg.Redis.URL)
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqEnq := queue.NewAsynqEnqueuer(asynqOpt, log)
		defer asynqEnq.Close()
		taskEnqueuer = asynqEnq

		asynqWorker = queue.NewWorker(asynqOpt, resetRepo, log)
		go func() {
			if err := asynqWorker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
		scheduler, err = queue.NewCleanupScheduler(asynqOpt, time.Hour, log)
		if err != nil {
			log.Fatal().Err(err).Msg("create cleanup scheduler")
		}
		go func() {
			if err := scheduler.Run(); err != nil {
				log.Warn().Err(err).Msg("scheduler stopped")
			}
		}()
	}

	hasher := security.NewArgon2Hasher()

	privateKey, err := infraauth.LoadRSAPrivateKey(cfg.JWT.PrivateKeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT private key")
	}
	issuer := infraauth.NewTokenIssuer(privateKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	accessSvc := access.NewService(membershipRepo)
	normalizer := tag.NewNormalizer(tagRepo)
	recorder := activity.NewRecorder(activityRepo)

	registerUC := auth.NewRegisterUser(userRepo, hasher)
	loginUC := auth.NewLogin(userRepo, hasher, issuer, cfg.JWT.AccessExpiry)
	forgotPasswordUC := auth.NewForgotPassword(userRepo, resetRepo, taskEnqueuer, cfg.Mail.ResetBaseURL, 3600, log)
	resetPasswordUC := auth.NewResetPassword(userRepo, resetRepo, hasher)

	projectSvc := project.NewService(db, projectRepo, membershipRepo, userRepo, accessSvc, dispatcher, taskEnqueuer, cfg.Mail.InviteBaseURL, log)
	issueSvc := issue.NewService(db, issueRepo, projectRepo, userRepo, membershipRepo, tagRepo, commentRepo, activityRepo, accessSvc, normalizer, recorder, dispatcher, log)
	commentSvc := comment.NewService(db, commentRepo, issueRepo, accessSvc, recorder, dispatcher, log)
	activityQuery := activity.NewQueryService(activityRepo, issueRepo, accessSvc)

	ipLimit, err := middleware.NewIPRateLimiter(formatRate(cfg.Limits.RequestsPerMinute))
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Server.Dev))

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:     handlers.NewAuthHandler(registerUC, loginUC, forgotPasswordUC, resetPasswordUC, userRepo, log),
		ProjectsHandler: handlers.NewProjectsHandler(projectSvc, log),
		IssuesHandler:   handlers.NewIssuesHandler(issueSvc, activityQuery, log),
		CommentsHandler: handlers.NewCommentsHandler(commentSvc, log),
		HealthHandler:   handlers.NewHealthHandler(pool, redisClient),
		RequireJWT:      middleware.NewAuthValidator(issuer).Handler,
		Log:             log,
		Secure:          secureMiddleware,
		CORS:            middleware.CORS(cfg.Server.AllowedOrigins),
		IPRateLimit:     ipLimit,
		Metrics:         true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if scheduler != nil {
		scheduler.Shutdown()
	}
	if asynqWorker != nil {
		asynqWorker.Shutdown()
	}
	log.Info().Msg("server stopped")
}

func formatRate(perMinute int64) string {
	if perMinute <= 0 {
		return ""
	}
	return strconv.FormatInt(perMinute, 10) + "-M"
}
