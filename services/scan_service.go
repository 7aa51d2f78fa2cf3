package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Ahmad-FikriA/ai-food-detection/metrics"
	"github.com/Ahmad-FikriA/ai-food-detection/models"
	"github.com/Ahmad-FikriA/ai-food-detection/utils"

	"github.com/google/uuid"
)

const (
	NoticeNoImage    = "no image supplied"
	NoticeUnreadable = "the image could not be read"
	NoticeTooLarge   = "the image is too large to process"
	NoticeNoFood     = "no food detected at the current confidence threshold"
)

// ScanService runs one image through detection, nutrition lookup and
// annotation. Store, Hub and Metrics are optional. MaxImagePixels <= 0
// means utils.DefaultMaxImagePixels.
type ScanService struct {
	Table          *NutritionTable
	Detector       Detector
	Options        DetectOptions
	Store          utils.ImageStore
	Hub            *RealtimeHub
	Metrics        *metrics.Metrics
	MaxImagePixels int64
}

type ScanRequest struct {
	Image        []byte
	PortionGrams float64
	Annotate     bool
}

type ScanResult struct {
	ID           string                 `json:"id"`
	ImageURL     string                 `json:"image_url,omitempty"`
	AnnotatedURL string                 `json:"annotated_url,omitempty"`
	PortionGrams float64                `json:"portion_grams"`
	Items        []models.DetectionItem `json:"items"`
	Totals       models.AggregateTotals `json:"totals"`
	Notice       string                 `json:"notice,omitempty"`

	// Annotated holds the encoded annotated JPEG when annotation ran.
	Annotated []byte `json:"-"`
}

// Scan never fails for a missing or undecodable image: the result carries
// no items and a Notice instead. Detector failures wrap ErrDetection.
func (s *ScanService) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	portion := req.PortionGrams
	if portion < 0 {
		return nil, ErrInvalidPortion
	}
	res := &ScanResult{
		ID:           uuid.NewString(),
		PortionGrams: portion,
		Items:        []models.DetectionItem{},
	}

	if len(req.Image) == 0 {
		s.Metrics.ObserveScan(metrics.OutcomeNoImage)
		res.Notice = NoticeNoImage
		return res, nil
	}
	img, format, err := utils.DecodeImage(req.Image, s.MaxImagePixels)
	if errors.Is(err, utils.ErrImageTooLarge) {
		log.Printf("scan %s: %v", res.ID, err)
		s.Metrics.ObserveScan(metrics.OutcomeTooLarge)
		res.Notice = NoticeTooLarge
		return res, nil
	}
	if err != nil {
		log.Printf("scan %s: %v", res.ID, err)
		s.Metrics.ObserveScan(metrics.OutcomeUnreadable)
		res.Notice = NoticeUnreadable
		return res, nil
	}

	if s.Store != nil {
		ext := utils.ExtensionFor(format)
		url, err := s.Store.Save(ctx, res.ID+ext, utils.ContentTypeFor(ext), req.Image)
		if err != nil {
			s.Metrics.ObserveScan(metrics.OutcomeStorageError)
			return nil, err
		}
		res.ImageURL = url
	}

	start := time.Now()
	results, err := s.Detector.Detect(ctx, req.Image, s.Options)
	s.Metrics.ObserveDetectDuration(time.Since(start))
	if err != nil {
		s.Metrics.ObserveScan(metrics.OutcomeDetectorError)
		return nil, fmt.Errorf("%w: %v", ErrDetection, err)
	}

	detections := models.FlattenResults(results)
	res.Items, res.Totals = ProcessDetections(detections, s.Table, portion)
	s.Metrics.ObserveDetections(len(res.Items))
	for _, it := range res.Items {
		if it.Nutrition == nil {
			s.Metrics.ObserveLookupMiss(NormalizeName(it.Food))
		}
	}

	if len(detections) == 0 {
		res.Notice = NoticeNoFood
	} else if req.Annotate {
		data, err := utils.EncodeJPEG(utils.Annotate(img, detections))
		if err != nil {
			return nil, err
		}
		res.Annotated = data
		if s.Store != nil {
			url, err := s.Store.Save(ctx, res.ID+"_annotated.jpg", "image/jpeg", data)
			if err != nil {
				s.Metrics.ObserveScan(metrics.OutcomeStorageError)
				return nil, err
			}
			res.AnnotatedURL = url
		}
	}

	s.Metrics.ObserveScan(metrics.OutcomeOK)
	if s.Hub != nil {
		s.Hub.Broadcast(map[string]any{
			"kind": "scan.completed",
			"scan": res,
		})
	}
	return res, nil
}
