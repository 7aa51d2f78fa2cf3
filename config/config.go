package config

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Ahmad-FikriA/ai-food-detection/services"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port string

	NutritionSource string // "csv" or "postgres"
	NutritionCSV    string
	FoodClassesFile string
	DefaultPortion  float64

	Detector         string // "http" or "rekognition"
	DetectorURL      string
	DetectConfidence float64
	DetectIoU        float64
	MaxLabels        int32
	AWSRegion        string

	Storage       string // "local" or "s3"
	UploadDir     string
	S3Bucket      string
	S3Region      string
	CloudFrontURL string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret      string
	MaxUploadMB    int64
	MaxImagePixels int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: cannot load .env file: %v", err)
	}

	awsRegion := getEnv("AWS_REGION", "ap-southeast-1")
	return &Config{
		Port: getEnv("PORT", "8080"),

		NutritionSource: getEnv("NUTRITION_SOURCE", "csv"),
		NutritionCSV:    getEnv("NUTRITION_CSV", "nutrition_data.csv"),
		FoodClassesFile: getEnv("FOOD_CLASSES_FILE", ""),
		DefaultPortion:  getPortion("DEFAULT_PORTION_GRAMS", services.DefaultPortionGrams),

		Detector:         getEnv("DETECTOR", "http"),
		DetectorURL:      getEnv("DETECTOR_URL", "http://localhost:8000"),
		DetectConfidence: getFloat("DETECT_CONFIDENCE", 0.5),
		DetectIoU:        getFloat("DETECT_IOU", 0.7),
		MaxLabels:        int32(getInt("REKOGNITION_MAX_LABELS", 20)),
		AWSRegion:        awsRegion,

		Storage:       getEnv("STORAGE", "local"),
		UploadDir:     getEnv("UPLOAD_DIR", "static/uploads"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Region:      getEnv("S3_REGION", awsRegion),
		CloudFrontURL: getEnv("CLOUDFRONT_URL", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "nutrition"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		MaxUploadMB:    int64(getInt("MAX_UPLOAD_MB", 10)),
		MaxImagePixels: int64(getInt("MAX_IMAGE_PIXELS", 40_000_000)),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// OpenDB connects to the Postgres database holding nutrition_facts.
func OpenDB(c *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// ReadFoodClasses reads the detector class list, one name per line.
// Blank lines and lines starting with # are skipped.
func ReadFoodClasses(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, sc.Err()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("warning: %s=%q is not a number, using %g", key, raw, fallback)
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("warning: %s=%q is not an integer, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

// getPortion accepts only finite, non-negative gram amounts.
func getPortion(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := services.ParsePortion(raw)
	if err != nil {
		log.Printf("warning: %s=%q: %v, using %g", key, raw, err, fallback)
		return fallback
	}
	return v
}
