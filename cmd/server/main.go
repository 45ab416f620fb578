package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kissariya_back_end/internal/catalog"
	"kissariya_back_end/internal/config"
	"kissariya_back_end/internal/database"
	"kissariya_back_end/internal/handlers/buyer"
	"kissariya_back_end/internal/handlers/product"
	"kissariya_back_end/internal/handlers/shop"
	"kissariya_back_end/internal/logger"
	"kissariya_back_end/internal/middleware"
	"kissariya_back_end/internal/routes"
	"kissariya_back_end/internal/search"
	"kissariya_back_end/internal/stats"
	"kissariya_back_end/internal/storage"
)

const cartCookieMaxAge = 86400 * 30

func main() {
	cfg, envLoaded := config.Load()

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !envLoaded {
		log.Info("ℹ️ Aucun fichier .env, variables d'environnement uniquement")
	}
	if err := run(cfg, log); err != nil {
		log.Fatal("❌ Arrêt du serveur", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	if cfg.SessionSecret == "" || cfg.JWTSecret == "" {
		return errors.New("SESSION_SECRET et JWT_SECRET sont obligatoires")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	// Les montants sortent en nombres JSON, pas en chaînes.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.EnsureSchema(db.Scylla, log); err != nil {
		return err
	}

	repo := catalog.NewRepository(db.Scylla)
	feed := catalog.NewFeed(repo, db.Redis, log)
	index := search.NewIndex(db.Elastic, cfg.ElasticIndex, log)
	images := storage.NewImages(db.MinIO, cfg.MinIOBucket, cfg.MinIOPublicURL, log)
	statsLoc, err := time.LoadLocation(cfg.StatsTimezone)
	if err != nil {
		log.Warn("⚠️ Fuseau statistiques inconnu, heure marocaine par défaut", zap.String("tz", cfg.StatsTimezone), zap.Error(err))
		statsLoc = stats.DefaultLocation()
	}
	views := stats.NewTracker(db.Scylla, statsLoc, log)

	if cfg.CartStore == buyer.StoreFile {
		log.Info("🛒 Paniers stockés sur disque, synchronisation temps réel désactivée", zap.String("dir", cfg.CartDir))
	} else {
		log.Info("🛒 Paniers stockés dans Redis", zap.Duration("ttl", cfg.CartTTL))
	}
	cartHandler := buyer.NewHandlerForStore(cfg.CartStore, cfg.CartDir, db.Redis, cfg.CartTTL, log)

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Redis:       db.Redis,
		CartCookies: middleware.NewCartCookieStore([]byte(cfg.SessionSecret), cartCookieMaxAge, cfg.IsProduction()),
		Cart:        cartHandler,
		Shops: shop.NewHandler(shop.Deps{
			Catalog:       repo,
			Views:         views,
			Feed:          feed,
			Search:        index,
			PublicBaseURL: cfg.PublicBaseURL,
			Log:           log,
		}),
		Products: product.NewHandler(repo, index, feed, images, log),
		Log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Serveur Kissariya lancé", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("🛑 Arrêt demandé, fermeture des connexions")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
