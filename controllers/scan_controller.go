package controllers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/Ahmad-FikriA/ai-food-detection/services"

	"github.com/gin-gonic/gin"
)

type ScanController struct {
	Scans          *services.ScanService
	Table          *services.NutritionTable
	DefaultPortion float64
	MaxUploadBytes int64
}

func NewScanController(scans *services.ScanService, table *services.NutritionTable, defaultPortion float64, maxUploadBytes int64) *ScanController {
	return &ScanController{
		Scans:          scans,
		Table:          table,
		DefaultPortion: defaultPortion,
		MaxUploadBytes: maxUploadBytes,
	}
}

var errTooLarge = errors.New("image is too large")

// GET /
func (sc *ScanController) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Portion": sc.DefaultPortion})
}

// POST /  (multipart: image, portion)
func (sc *ScanController) Upload(c *gin.Context) {
	portion, err := sc.portion(c.PostForm("portion"))
	if err != nil {
		c.HTML(http.StatusBadRequest, "index.html", gin.H{"Portion": sc.DefaultPortion, "Error": err.Error()})
		return
	}

	data, err := sc.readImage(c)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.HTML(status, "index.html", gin.H{"Portion": portion, "Error": err.Error()})
		return
	}

	res, err := sc.Scans.Scan(c.Request.Context(), services.ScanRequest{
		Image:        data,
		PortionGrams: portion,
		Annotate:     true,
	})
	if err != nil {
		log.Printf("scan failed: %v", err)
		c.HTML(statusFor(err), "index.html", gin.H{"Portion": portion, "Error": err.Error()})
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Portion":      portion,
		"Items":        res.Items,
		"Totals":       res.Totals,
		"ImageURL":     res.ImageURL,
		"AnnotatedURL": res.AnnotatedURL,
		"Notice":       res.Notice,
	})
}

// POST /api/scan  (multipart: image, portion, annotate)
func (sc *ScanController) ScanAPI(c *gin.Context) {
	portion, err := sc.portion(c.PostForm("portion"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := sc.readImage(c)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	annotate, _ := strconv.ParseBool(c.DefaultPostForm("annotate", "true"))

	res, err := sc.Scans.Scan(c.Request.Context(), services.ScanRequest{
		Image:        data,
		PortionGrams: portion,
		Annotate:     annotate,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/nutrition/:name?portion=150
func (sc *ScanController) LookupNutrition(c *gin.Context) {
	portion, err := sc.portion(c.Query("portion"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := c.Param("name")
	rec, ok := sc.Table.Lookup(name, portion)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("no nutrition data for %q", services.NormalizeName(name)),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"food":          services.NormalizeName(name),
		"portion_grams": portion,
		"nutrition":     rec,
	})
}

func (sc *ScanController) portion(raw string) (float64, error) {
	if raw == "" {
		return sc.DefaultPortion, nil
	}
	return services.ParsePortion(raw)
}

// readImage returns nil data, not an error, when no file was sent.
func (sc *ScanController) readImage(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid upload: %w", err)
	}
	if sc.MaxUploadBytes > 0 && fh.Size > sc.MaxUploadBytes {
		return nil, errTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("invalid upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidPortion):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrDetection):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
