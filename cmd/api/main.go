package main

import (
	"context"
	"net/http"

	"pressing-api/internal/address"
	"pressing-api/internal/backend"
	"pressing-api/internal/cache"
	"pressing-api/internal/config"
	"pressing-api/internal/geocode"
	"pressing-api/internal/handler"
	"pressing-api/internal/repository"

	_ "pressing-api/docs"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Pressing Location API
// @version 1.0
// @description Location and cache coordination service for the pressing dashboard (Abidjan).
// @BasePath /
func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	ctx := context.Background()

	// Optional landmark database for the reverse-geocoding fallback
	resolverOpts := []geocode.Option{geocode.WithLogger(log.Logger)}
	var landmarkRepo *repository.Repository
	if cfg.DBSource != "" {
		conn, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to landmark db")
		}
		defer conn.Close()
		landmarkRepo = repository.NewRepository(conn)
		resolverOpts = append(resolverOpts, geocode.WithLandmarks(landmarkRepo))
	}

	resolver := geocode.NewResolver(cfg.Geocode.Endpoint, cfg.Geocode.AccessToken, cfg.Geocode.Timeout, resolverOpts...)

	// Upstream pressing API, probed with fallback, behind the tag cache
	store := cache.NewStore()
	client := backend.Connect(ctx, backend.Config{
		BaseURL:     cfg.Backend.BaseURL,
		FallbackURL: cfg.Backend.FallbackURL,
		Token:       cfg.Backend.Token,
		Timeout:     cfg.Backend.Timeout,
	}, store, log.Logger)

	manager := address.NewManager(client, nil, log.Logger)

	// Initialize handlers
	geocodeHandler := handler.NewGeocodeHandler(resolver)
	locationHandler := handler.NewLocationHandler(resolver, manager)
	trackingHandler := handler.NewTrackingHandler(resolver, manager, cfg.Tracker, log.Logger)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/reverse-geocode", geocodeHandler.ReverseGeocode)
	r.GET("/district", geocodeHandler.District)
	r.POST("/position/confirm", locationHandler.Confirm)
	r.PUT("/profile/location", locationHandler.UpdateLocation)

	r.POST("/tracking/start", trackingHandler.Start)
	r.POST("/tracking/:id/position", trackingHandler.Position)
	r.POST("/tracking/:id/failure", trackingHandler.Failure)
	r.POST("/tracking/:id/stop", trackingHandler.Stop)
	r.GET("/tracking/:id/history", trackingHandler.History)

	if landmarkRepo != nil {
		landmarkHandler := handler.NewLandmarkHandler(landmarkRepo)
		r.GET("/landmarks", landmarkHandler.Search)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.Run(cfg.ServerAddress)
}
