package main

import (
	"context"
	"log"

	"github.com/Ahmad-FikriA/ai-food-detection/bootstrap"
	"github.com/Ahmad-FikriA/ai-food-detection/config"
	"github.com/Ahmad-FikriA/ai-food-detection/controllers"
	"github.com/Ahmad-FikriA/ai-food-detection/metrics"
	"github.com/Ahmad-FikriA/ai-food-detection/routes"
	"github.com/Ahmad-FikriA/ai-food-detection/services"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	table, err := bootstrap.NutritionTable(ctx, cfg)
	if err != nil {
		log.Fatalf("cannot start without nutrition data: %v", err)
	}
	detector, err := bootstrap.Detector(ctx, cfg)
	if err != nil {
		log.Fatalf("detector setup failed: %v", err)
	}
	store, uploadDir, err := bootstrap.ImageStore(ctx, cfg)
	if err != nil {
		log.Fatalf("image storage setup failed: %v", err)
	}

	hub := services.NewRealtimeHub()
	m := metrics.New()
	scans := &services.ScanService{
		Table:          table,
		Detector:       detector,
		Options:        bootstrap.DetectOptions(cfg),
		Store:          store,
		Hub:            hub,
		Metrics:        m,
		MaxImagePixels: cfg.MaxImagePixels,
	}

	r := routes.SetupRouter(routes.Deps{
		Scan:      controllers.NewScanController(scans, table, cfg.DefaultPortion, cfg.MaxUploadMB<<20),
		Foods:     controllers.NewFoodController(table),
		Realtime:  controllers.NewRealtimeController(hub),
		Metrics:   m,
		JWTSecret: cfg.JWTSecret,
		UploadDir: uploadDir,
	})
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20

	log.Printf("listening on :%s (detector=%s, storage=%s)", cfg.Port, cfg.Detector, cfg.Storage)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
