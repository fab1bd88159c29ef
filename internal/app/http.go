package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/config"
	"github.com/adanyl0v/go-task-tracker/internal/delivery/http/v1"
	"github.com/adanyl0v/go-task-tracker/internal/domain/auth"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	handler := newV1Handler(cfg)

	router := gin.New()
	router.Use(handler.HandleRequestLog)
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(httpCfg)))
	v1.RegisterRoutes(router, handler)

	server := &http.Server{
		Addr:              httpCfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill -9 can't be caught, so only SIGINT and SIGTERM trigger a
	// graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func newV1Handler(cfg *config.Config) v1.Handler {
	jwtCfg := cfg.JWT
	tokens := auth.NewTokenManager(jwtCfg.Issuer, []byte(jwtCfg.SigningKey), jwtCfg.AccessTokenTTL)

	return v1.New(
		globalLogger,
		globalPostgresPool,
		services.NewAuthService(globalLogger, globalPostgresPool, tokens),
		services.NewUserService(globalLogger, globalPostgresPool),
		services.NewTaskService(globalLogger, globalPostgresPool),
	)
}

func corsConfig(cfg config.HTTPConfig) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	corsCfg.AddAllowHeaders("Authorization")

	if len(cfg.CORSAllowedOrigins) == 0 || cfg.CORSAllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return corsCfg
}
