package vision

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/kozaktomas/face-attendance/internal/config"
)

// listFacesPageSize caps ListFaces pages; Rekognition allows up to 4096.
const listFacesPageSize = 1000

// rekognitionAPI is the subset of the Rekognition client used by the
// adapter. Narrowing the client keeps pagination and collection handling
// unit-testable without AWS.
type rekognitionAPI interface {
	DetectFaces(ctx context.Context, in *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
	SearchFacesByImage(ctx context.Context, in *rekognition.SearchFacesByImageInput, optFns ...func(*rekognition.Options)) (*rekognition.SearchFacesByImageOutput, error)
	IndexFaces(ctx context.Context, in *rekognition.IndexFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.IndexFacesOutput, error)
	ListFaces(ctx context.Context, in *rekognition.ListFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.ListFacesOutput, error)
	DescribeCollection(ctx context.Context, in *rekognition.DescribeCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.DescribeCollectionOutput, error)
	CreateCollection(ctx context.Context, in *rekognition.CreateCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.CreateCollectionOutput, error)
}

// Rekognition implements Provider on top of an AWS Rekognition collection.
type Rekognition struct {
	client       rekognitionAPI
	collectionID string
	callTimeout  time.Duration
}

// NewRekognition creates a provider for the given collection.
func NewRekognition(client rekognitionAPI, collectionID string, callTimeout time.Duration) *Rekognition {
	return &Rekognition{
		client:       client,
		collectionID: collectionID,
		callTimeout:  callTimeout,
	}
}

// NewRekognitionFromConfig builds the AWS client from the default credential
// chain and wraps it for the configured collection.
func NewRekognitionFromConfig(ctx context.Context, cfg *config.VisionConfig) (*Rekognition, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return NewRekognition(rekognition.NewFromConfig(awsCfg), cfg.CollectionID, cfg.CallTimeout), nil
}

// callContext derives a per-call timeout context when one is configured.
func (r *Rekognition) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.callTimeout)
}

// wrapCallError classifies provider failures, surfacing timeouts as
// ErrProviderTimeout.
func wrapCallError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrProviderTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// DetectFaces finds all faces in the image and returns their fractional
// bounding boxes in provider order.
func (r *Rekognition) DetectFaces(ctx context.Context, image []byte) ([]BoundingBox, error) {
	ctx, cancel := r.callContext(ctx)
	defer cancel()

	out, err := r.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return nil, wrapCallError("detect faces", err)
	}

	boxes := make([]BoundingBox, 0, len(out.FaceDetails))
	for _, detail := range out.FaceDetails {
		if detail.BoundingBox == nil {
			continue
		}
		boxes = append(boxes, BoundingBox{
			Left:   float64(aws.ToFloat32(detail.BoundingBox.Left)),
			Top:    float64(aws.ToFloat32(detail.BoundingBox.Top)),
			Width:  float64(aws.ToFloat32(detail.BoundingBox.Width)),
			Height: float64(aws.ToFloat32(detail.BoundingBox.Height)),
		})
	}
	return boxes, nil
}

// SearchFace returns the best collection match at or above minSimilarity,
// or nil when no enrolled face matches. A crop in which Rekognition cannot
// find a searchable face is reported as no match, not an error.
func (r *Rekognition) SearchFace(ctx context.Context, crop []byte, minSimilarity float32) (*FaceMatch, error) {
	ctx, cancel := r.callContext(ctx)
	defer cancel()

	out, err := r.client.SearchFacesByImage(ctx, &rekognition.SearchFacesByImageInput{
		CollectionId:       aws.String(r.collectionID),
		Image:              &types.Image{Bytes: crop},
		MaxFaces:           aws.Int32(1),
		FaceMatchThreshold: aws.Float32(minSimilarity),
	})
	if err != nil {
		var invalidParam *types.InvalidParameterException
		if errors.As(err, &invalidParam) {
			// No searchable face in the crop.
			return nil, nil
		}
		return nil, wrapCallError("search face", err)
	}

	if len(out.FaceMatches) == 0 {
		return nil, nil
	}

	best := out.FaceMatches[0]
	if best.Face == nil || best.Face.ExternalImageId == nil {
		return nil, nil
	}
	return &FaceMatch{
		ExternalID: aws.ToString(best.Face.ExternalImageId),
		Similarity: aws.ToFloat32(best.Similarity),
	}, nil
}

// IndexFace enrolls one face image under the external id. The photo must
// contain exactly one usable face; Rekognition indexes the largest.
func (r *Rekognition) IndexFace(ctx context.Context, image []byte, externalID string) error {
	ctx, cancel := r.callContext(ctx)
	defer cancel()

	out, err := r.client.IndexFaces(ctx, &rekognition.IndexFacesInput{
		CollectionId:    aws.String(r.collectionID),
		ExternalImageId: aws.String(externalID),
		Image:           &types.Image{Bytes: image},
		MaxFaces:        aws.Int32(1),
		QualityFilter:   types.QualityFilterAuto,
	})
	if err != nil {
		return wrapCallError("index face", err)
	}

	if len(out.FaceRecords) == 0 {
		return fmt.Errorf("index face for %s: %w", externalID, ErrNoFaceFound)
	}
	return nil
}

// ListEnrolledIDs pages through the collection and returns the
// de-duplicated, sorted set of external ids.
func (r *Rekognition) ListEnrolledIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var nextToken *string

	for {
		callCtx, cancel := r.callContext(ctx)
		out, err := r.client.ListFaces(callCtx, &rekognition.ListFacesInput{
			CollectionId: aws.String(r.collectionID),
			MaxResults:   aws.Int32(listFacesPageSize),
			NextToken:    nextToken,
		})
		cancel()
		if err != nil {
			return nil, wrapCallError("list faces", err)
		}

		for _, face := range out.Faces {
			if id := aws.ToString(face.ExternalImageId); id != "" {
				seen[id] = struct{}{}
			}
		}

		nextToken = out.NextToken
		if nextToken == nil {
			break
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// EnsureCollection verifies the collection exists, creating it if absent.
// Safe to call repeatedly; a concurrent create by another process is
// tolerated.
func (r *Rekognition) EnsureCollection(ctx context.Context) error {
	describeCtx, cancel := r.callContext(ctx)
	_, err := r.client.DescribeCollection(describeCtx, &rekognition.DescribeCollectionInput{
		CollectionId: aws.String(r.collectionID),
	})
	cancel()
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return wrapCallError("describe collection", err)
	}

	createCtx, cancel := r.callContext(ctx)
	defer cancel()
	_, err = r.client.CreateCollection(createCtx, &rekognition.CreateCollectionInput{
		CollectionId: aws.String(r.collectionID),
	})
	if err != nil {
		var exists *types.ResourceAlreadyExistsException
		if errors.As(err, &exists) {
			return nil
		}
		return wrapCallError("create collection", err)
	}
	return nil
}
