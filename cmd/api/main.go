package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storage-arbitrage/internal/api/handlers"
	"storage-arbitrage/internal/api/middleware"
	"storage-arbitrage/internal/config"
	"storage-arbitrage/internal/data"
	"storage-arbitrage/internal/observability"
	"storage-arbitrage/internal/store"
	"storage-arbitrage/internal/store/memory"
	"storage-arbitrage/internal/store/postgres"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to a YAML config file")
		addr        = flag.String("addr", "", "listen address (overrides config)")
		datasetsDir = flag.String("datasets", "", "datasets directory (overrides config)")
		presetsDir  = flag.String("presets", "", "storage presets directory (overrides config)")
		postgresDSN = flag.String("postgres", "", "postgres DSN for run persistence (overrides config, empty = in-memory)")
		logLevel    = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.WithError(err).Fatal("invalid log level")
	}
	log.SetLevel(level)

	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.WithError(err).WithField("path", *configPath).Fatal("load config")
		}
	}
	if *addr != "" {
		cfg.API.Addr = *addr
	}
	if *datasetsDir != "" {
		cfg.Data.DatasetsDir = *datasetsDir
	}
	if *presetsDir != "" {
		cfg.API.PresetsDir = *presetsDir
	}
	if *postgresDSN != "" {
		cfg.API.PostgresDSN = *postgresDSN
	}

	ctx := context.Background()
	var runs store.RunStore = memory.New()
	if dsn := cfg.API.PostgresDSN; dsn != "" {
		pool, err := postgres.NewPool(ctx, dsn)
		if err != nil {
			log.WithError(err).Fatal("connect postgres")
		}
		defer pool.Close()

		pg := postgres.NewStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.WithError(err).Fatal("ensure run schema")
		}
		runs = pg
		log.Info("persisting runs to postgres")
	} else {
		log.Info("persisting runs in memory")
	}

	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(log))

	// The parsed-series cache is shared between the simulate and datasets
	// handlers.
	cache := data.NewCache(0)

	simulateHandler := handlers.NewSimulateHandler(cfg, cache, runs, log)
	runsHandler := handlers.NewRunsHandler(runs, log)
	datasetsHandler := handlers.NewDatasetsHandler(cfg.Data.DatasetsDir, cfg.Storage, cache, log)
	storagesHandler := handlers.NewStoragesHandler(cfg.API.PresetsDir, log)
	strategyHandler := handlers.NewStrategyHandler()
	economicsHandler := handlers.NewEconomicsHandler(cfg.Storage, cfg.Economics)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(observability.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/simulate", simulateHandler.Simulate)

		api.GET("/runs", runsHandler.ListRuns)
		api.GET("/runs/:id", runsHandler.GetRun)
		api.DELETE("/runs/:id", runsHandler.DeleteRun)

		api.GET("/datasets", datasetsHandler.ListDatasets)
		api.GET("/datasets/potential", datasetsHandler.Potential)

		api.GET("/storages", storagesHandler.ListStorages)
		api.GET("/strategies", strategyHandler.ListStrategies)

		api.POST("/economics", economicsHandler.Analyze)
	}

	log.WithField("addr", cfg.API.Addr).Info("starting api server")
	if err := router.Run(cfg.API.Addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
