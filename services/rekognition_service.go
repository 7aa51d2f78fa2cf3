package services

import (
	"context"
	"fmt"
	"math"

	"github.com/Ahmad-FikriA/ai-food-detection/models"
	"github.com/Ahmad-FikriA/ai-food-detection/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

type labelDetector interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionDetector uses AWS Rekognition DetectLabels as the detector.
// Only labels with located instances produce boxes. Rekognition applies
// its own overlap suppression, so DetectOptions.IoU is not used.
type RekognitionDetector struct {
	client    labelDetector
	maxLabels int32
}

func NewRekognitionDetector(ctx context.Context, region string, maxLabels int32) (*RekognitionDetector, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &RekognitionDetector{client: rekognition.NewFromConfig(cfg), maxLabels: maxLabels}, nil
}

func (r *RekognitionDetector) Detect(ctx context.Context, image []byte, opts DetectOptions) ([]models.DetectionResult, error) {
	width, height, err := utils.ImageSize(image)
	if err != nil {
		return nil, err
	}

	in := &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MinConfidence: aws.Float32(float32(opts.Confidence * 100)),
	}
	if r.maxLabels > 0 {
		in.MaxLabels = aws.Int32(r.maxLabels)
	}
	out, err := r.client.DetectLabels(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectLabels: %w", err)
	}

	res := models.DetectionResult{Names: map[int]string{}}
	for _, l := range out.Labels {
		if l.Name == nil || len(l.Instances) == 0 {
			continue
		}
		classID := len(res.Names)
		res.Names[classID] = *l.Name

		for _, inst := range l.Instances {
			if inst.BoundingBox == nil {
				continue
			}
			conf := aws.ToFloat32(inst.Confidence)
			if inst.Confidence == nil {
				conf = aws.ToFloat32(l.Confidence)
			}
			bb := inst.BoundingBox
			left := float64(aws.ToFloat32(bb.Left))
			top := float64(aws.ToFloat32(bb.Top))
			res.Boxes = append(res.Boxes, models.DetectedBox{
				ClassID:    classID,
				Confidence: float64(conf) / 100,
				Box: models.BoundingBox{
					X1: int(math.Round(left * float64(width))),
					Y1: int(math.Round(top * float64(height))),
					X2: int(math.Round((left + float64(aws.ToFloat32(bb.Width))) * float64(width))),
					Y2: int(math.Round((top + float64(aws.ToFloat32(bb.Height))) * float64(height))),
				},
			})
		}
	}
	return []models.DetectionResult{res}, nil
}
