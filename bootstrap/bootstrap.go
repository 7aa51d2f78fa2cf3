// Package bootstrap builds the long-lived collaborators shared by the
// web server and the interactive scanner from a *config.Config.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/Ahmad-FikriA/ai-food-detection/config"
	"github.com/Ahmad-FikriA/ai-food-detection/services"
	"github.com/Ahmad-FikriA/ai-food-detection/utils"
)

// NutritionTable loads the reference table from the configured source,
// restricted to the food class list when one is configured.
func NutritionTable(ctx context.Context, cfg *config.Config) (*services.NutritionTable, error) {
	var allow []string
	if cfg.FoodClassesFile != "" {
		names, err := config.ReadFoodClasses(cfg.FoodClassesFile)
		if err != nil {
			return nil, &services.DataLoadError{Path: cfg.FoodClassesFile, Reason: "cannot read food class list", Err: err}
		}
		allow = names
	}

	var (
		table *services.NutritionTable
		err   error
	)
	switch cfg.NutritionSource {
	case "csv", "":
		table, err = services.LoadNutritionTable(cfg.NutritionCSV, allow)
	case "postgres":
		db, dbErr := config.OpenDB(cfg)
		if dbErr != nil {
			return nil, &services.DataLoadError{Path: cfg.DBName, Reason: "cannot open database", Err: dbErr}
		}
		table, err = services.LoadNutritionTableFromDB(ctx, db, allow)
		if sqlDB, e := db.DB(); e == nil {
			_ = sqlDB.Close()
		}
	default:
		return nil, fmt.Errorf("unknown NUTRITION_SOURCE %q", cfg.NutritionSource)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("nutrition table ready: %d foods", table.Len())
	return table, nil
}

func Detector(ctx context.Context, cfg *config.Config) (services.Detector, error) {
	switch cfg.Detector {
	case "http", "":
		return services.NewYOLOClient(cfg.DetectorURL), nil
	case "rekognition":
		return services.NewRekognitionDetector(ctx, cfg.AWSRegion, cfg.MaxLabels)
	default:
		return nil, fmt.Errorf("unknown DETECTOR %q", cfg.Detector)
	}
}

func DetectOptions(cfg *config.Config) services.DetectOptions {
	return services.DetectOptions{Confidence: cfg.DetectConfidence, IoU: cfg.DetectIoU}
}

// ImageStore returns the store and, for local storage, the directory to
// serve at /uploads.
func ImageStore(ctx context.Context, cfg *config.Config) (utils.ImageStore, string, error) {
	switch cfg.Storage {
	case "local", "":
		s, err := utils.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			return nil, "", err
		}
		return s, s.Dir(), nil
	case "s3":
		s, err := utils.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, "food-scans", cfg.CloudFrontURL)
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	default:
		return nil, "", fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
}
