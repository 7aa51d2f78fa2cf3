package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"sync"
	"testing"

	"github.com/Ahmad-FikriA/ai-food-detection/metrics"
	"github.com/Ahmad-FikriA/ai-food-detection/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

type stubDetector struct {
	results []models.DetectionResult
	err     error
	calls   int
	opts    DetectOptions
}

func (s *stubDetector) Detect(_ context.Context, _ []byte, opts DetectOptions) ([]models.DetectionResult, error) {
	s.calls++
	s.opts = opts
	return s.results, s.err
}

type memoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (m *memoryStore) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = data
	return "/uploads/" + name, nil
}

func sampleResults() []models.DetectionResult {
	return []models.DetectionResult{{
		Names: map[int]string{0: "Nasi Goreng", 1: "Kiwi"},
		Boxes: []models.DetectedBox{
			{ClassID: 0, Confidence: 0.91, Box: models.BoundingBox{X1: 5, Y1: 30, X2: 40, Y2: 60}},
			{ClassID: 1, Confidence: 0.64, Box: models.BoundingBox{X1: 45, Y1: 10, X2: 70, Y2: 50}},
		},
	}}
}

func TestScanNoImageIsNoop(t *testing.T) {
	det := &stubDetector{}
	m := metrics.New()
	s := &ScanService{Table: loadSample(t, nil), Detector: det, Metrics: m}

	res, err := s.Scan(context.Background(), ScanRequest{PortionGrams: 100})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Items) != 0 || res.Notice != NoticeNoImage {
		t.Fatalf("unexpected result %+v", res)
	}
	if det.calls != 0 {
		t.Fatalf("detector must not be called without an image")
	}
	if got := testutil.ToFloat64(m.Scans().WithLabelValues(metrics.OutcomeNoImage)); got != 1 {
		t.Fatalf("no_image scans = %v, want 1", got)
	}
}

func TestScanUnreadableImageIsNoop(t *testing.T) {
	det := &stubDetector{}
	s := &ScanService{Table: loadSample(t, nil), Detector: det}

	res, err := s.Scan(context.Background(), ScanRequest{Image: []byte("not an image"), PortionGrams: 100})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Items) != 0 || res.Notice != NoticeUnreadable {
		t.Fatalf("unexpected result %+v", res)
	}
	if det.calls != 0 {
		t.Fatalf("detector must not be called for an unreadable image")
	}
}

func TestScanOversizedImageIsNoop(t *testing.T) {
	det := &stubDetector{}
	store := &memoryStore{}
	m := metrics.New()
	s := &ScanService{Table: loadSample(t, nil), Detector: det, Store: store, Metrics: m, MaxImagePixels: 50 * 50}

	res, err := s.Scan(context.Background(), ScanRequest{Image: testJPEG(t, 80, 60), PortionGrams: 100})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Items) != 0 || res.Notice != NoticeTooLarge {
		t.Fatalf("unexpected result %+v", res)
	}
	if det.calls != 0 || len(store.files) != 0 {
		t.Fatalf("oversized image must not be stored or detected")
	}
	if got := testutil.ToFloat64(m.Scans().WithLabelValues(metrics.OutcomeTooLarge)); got != 1 {
		t.Fatalf("too_large scans = %v, want 1", got)
	}
}

func TestScanDetectorErrorPropagates(t *testing.T) {
	s := &ScanService{
		Table:    loadSample(t, nil),
		Detector: &stubDetector{err: errors.New("model crashed")},
	}

	_, err := s.Scan(context.Background(), ScanRequest{Image: testJPEG(t, 20, 20), PortionGrams: 100})
	if !errors.Is(err, ErrDetection) {
		t.Fatalf("err = %v, want ErrDetection", err)
	}
	if !strings.Contains(err.Error(), "model crashed") {
		t.Fatalf("err = %v, want the detector message kept", err)
	}
}

func TestScanInvalidPortion(t *testing.T) {
	s := &ScanService{Table: loadSample(t, nil), Detector: &stubDetector{}}
	if _, err := s.Scan(context.Background(), ScanRequest{PortionGrams: -5}); !errors.Is(err, ErrInvalidPortion) {
		t.Fatalf("err = %v, want ErrInvalidPortion", err)
	}
}

func TestScanDetectsLooksUpAndAnnotates(t *testing.T) {
	det := &stubDetector{results: sampleResults()}
	store := &memoryStore{}
	hub := NewRealtimeHub()
	m := metrics.New()
	s := &ScanService{
		Table:    loadSample(t, nil),
		Detector: det,
		Options:  DefaultDetectOptions(),
		Store:    store,
		Hub:      hub,
		Metrics:  m,
	}
	img := testJPEG(t, 80, 80)

	res, err := s.Scan(context.Background(), ScanRequest{Image: img, PortionGrams: 200, Annotate: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if det.opts != DefaultDetectOptions() {
		t.Fatalf("detector got options %+v", det.opts)
	}
	if len(res.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(res.Items))
	}
	if res.Items[0].Nutrition == nil || res.Items[0].Nutrition.Calories != 500 {
		t.Fatalf("nasi goreng at 200 g = %+v, want 500 kcal", res.Items[0].Nutrition)
	}
	if res.Items[1].Nutrition != nil {
		t.Fatalf("kiwi should have no nutrition data")
	}
	if res.Totals.Calories != 500 || res.Totals.Carbohydrate != 70 {
		t.Fatalf("totals = %+v", res.Totals)
	}

	if res.ImageURL != "/uploads/"+res.ID+".jpg" {
		t.Fatalf("ImageURL = %q", res.ImageURL)
	}
	if res.AnnotatedURL != "/uploads/"+res.ID+"_annotated.jpg" {
		t.Fatalf("AnnotatedURL = %q", res.AnnotatedURL)
	}
	if !bytes.Equal(store.files[res.ID+".jpg"], img) {
		t.Fatalf("original upload not stored unchanged")
	}
	if len(res.Annotated) == 0 || !bytes.Equal(store.files[res.ID+"_annotated.jpg"], res.Annotated) {
		t.Fatalf("annotated image not stored")
	}

	if got := testutil.ToFloat64(m.Scans().WithLabelValues(metrics.OutcomeOK)); got != 1 {
		t.Fatalf("ok scans = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LookupMisses().WithLabelValues("Kiwi")); got != 1 {
		t.Fatalf("kiwi misses = %v, want 1", got)
	}
}

func TestScanNoDetections(t *testing.T) {
	store := &memoryStore{}
	s := &ScanService{Table: loadSample(t, nil), Detector: &stubDetector{}, Store: store}

	res, err := s.Scan(context.Background(), ScanRequest{Image: testJPEG(t, 16, 16), PortionGrams: 100, Annotate: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Notice != NoticeNoFood || len(res.Items) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.AnnotatedURL != "" || len(store.files) != 1 {
		t.Fatalf("nothing but the upload should be stored, got %d files", len(store.files))
	}
}

func TestScanStorageErrorFails(t *testing.T) {
	det := &stubDetector{results: sampleResults()}
	s := &ScanService{Table: loadSample(t, nil), Detector: det, Store: &memoryStore{err: errors.New("disk full")}}

	if _, err := s.Scan(context.Background(), ScanRequest{Image: testJPEG(t, 16, 16), PortionGrams: 100}); err == nil {
		t.Fatalf("expected storage error")
	}
	if det.calls != 0 {
		t.Fatalf("detector should not run when the upload cannot be saved")
	}
}
