package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Ahmad-FikriA/ai-food-detection/models"
)

// DetectOptions are the thresholds handed to the detector.
type DetectOptions struct {
	Confidence float64 // minimum confidence, 0..1
	IoU        float64 // NMS overlap threshold, 0..1
}

func DefaultDetectOptions() DetectOptions {
	return DetectOptions{Confidence: 0.5, IoU: 0.7}
}

// Detector runs object detection on an encoded image.
type Detector interface {
	Detect(ctx context.Context, image []byte, opts DetectOptions) ([]models.DetectionResult, error)
}

// YOLOClient calls a YOLO inference server over HTTP.
type YOLOClient struct {
	baseURL string
	client  *http.Client
}

func NewYOLOClient(baseURL string) *YOLOClient {
	return &YOLOClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type predictResponse struct {
	Results []struct {
		Names map[string]string `json:"names"`
		Boxes []struct {
			Cls  int        `json:"cls"`
			Conf float64    `json:"conf"`
			XYXY [4]float64 `json:"xyxy"`
		} `json:"boxes"`
	} `json:"results"`
}

// Detect posts the image to {baseURL}/predict as multipart form data.
func (y *YOLOClient) Detect(ctx context.Context, image []byte, opts DetectOptions) ([]models.DetectionResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "image")
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	_ = mw.WriteField("conf", strconv.FormatFloat(opts.Confidence, 'f', -1, 64))
	_ = mw.WriteField("iou", strconv.FormatFloat(opts.IoU, 'f', -1, 64))
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.baseURL+"/predict", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create predict request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call detector: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read detector response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var pr predictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse detector JSON: %w", err)
	}

	results := make([]models.DetectionResult, 0, len(pr.Results))
	for _, r := range pr.Results {
		names := make(map[int]string, len(r.Names))
		for k, v := range r.Names {
			id, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("detector returned class id %q: %w", k, err)
			}
			names[id] = v
		}
		boxes := make([]models.DetectedBox, 0, len(r.Boxes))
		for _, b := range r.Boxes {
			boxes = append(boxes, models.DetectedBox{
				ClassID:    b.Cls,
				Confidence: b.Conf,
				Box: models.BoundingBox{
					X1: int(b.XYXY[0]),
					Y1: int(b.XYXY[1]),
					X2: int(b.XYXY[2]),
					Y2: int(b.XYXY[3]),
				},
			})
		}
		results = append(results, models.DetectionResult{Names: names, Boxes: boxes})
	}
	return results, nil
}
