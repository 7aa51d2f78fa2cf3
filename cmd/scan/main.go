package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ahmad-FikriA/ai-food-detection/bootstrap"
	"github.com/Ahmad-FikriA/ai-food-detection/config"
	"github.com/Ahmad-FikriA/ai-food-detection/services"
	"github.com/Ahmad-FikriA/ai-food-detection/utils"
)

func main() {
	cfg := config.Load()

	var (
		imagePath string
		portion   string
		outDir    string
	)
	flag.StringVar(&cfg.NutritionCSV, "data", cfg.NutritionCSV, "Nutrition CSV file")
	flag.StringVar(&cfg.FoodClassesFile, "classes", cfg.FoodClassesFile, "Food class list (one per line)")
	flag.StringVar(&cfg.DetectorURL, "detector-url", cfg.DetectorURL, "YOLO inference server URL")
	flag.StringVar(&cfg.Detector, "detector", cfg.Detector, "Detector backend (http, rekognition)")
	flag.Float64Var(&cfg.DetectConfidence, "conf", cfg.DetectConfidence, "Confidence threshold")
	flag.Float64Var(&cfg.DetectIoU, "iou", cfg.DetectIoU, "IoU threshold")
	flag.StringVar(&imagePath, "image", "", "Image to scan (prompted for when empty)")
	flag.StringVar(&portion, "portion", "", "Portion in grams (default: per 100 g)")
	flag.StringVar(&outDir, "out", "runs/detect", "Directory for annotated images")
	flag.Parse()

	ctx := context.Background()
	table, err := bootstrap.NutritionTable(ctx, cfg)
	if err != nil {
		log.Fatalf("cannot show nutrition without nutrition data: %v", err)
	}
	detector, err := bootstrap.Detector(ctx, cfg)
	if err != nil {
		log.Fatalf("cannot detect without a detector: %v", err)
	}
	grams, err := services.ParsePortion(portion)
	if err != nil {
		log.Fatalf("-portion: %v", err)
	}

	if imagePath == "" {
		fmt.Println("Enter the path of the food image to test (e.g. test/images/photo.jpg):")
		fmt.Print("Image path: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("no image path given")
		}
		imagePath = strings.TrimSpace(line)
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("Error: image not found at %s. Please check the path.\n", imagePath)
			os.Exit(1)
		}
		log.Fatalf("cannot read %s: %v", imagePath, err)
	}

	fmt.Printf("\nRunning detection on: %s\n", imagePath)
	scans := &services.ScanService{
		Table:          table,
		Detector:       detector,
		Options:        bootstrap.DetectOptions(cfg),
		MaxImagePixels: cfg.MaxImagePixels,
	}
	res, err := scans.Scan(ctx, services.ScanRequest{
		Image:        data,
		PortionGrams: grams,
		Annotate:     true,
	})
	if err != nil {
		log.Fatalf("scan failed: %v", err)
	}

	services.WriteReport(os.Stdout, res)

	if len(res.Annotated) > 0 {
		store, err := utils.NewLocalStore(outDir, outDir)
		if err != nil {
			log.Fatalf("cannot write annotated image: %v", err)
		}
		name := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath)) + "_annotated.jpg"
		where, err := store.Save(ctx, name, "image/jpeg", res.Annotated)
		if err != nil {
			log.Fatalf("cannot write annotated image: %v", err)
		}
		fmt.Printf("\nAnnotated image saved to %s\n", where)
	}
}
