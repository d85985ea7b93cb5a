package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

// S3Store keeps the master/latest pair as objects in a bucket. S3 PutObject
// is atomic per object (readers see the previous or the new version, never
// a partial body), which satisfies the Store contract without temp files.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Store builds an S3-backed store using the default AWS credential
// chain for the given region.
func NewS3Store(ctx context.Context, bucket, prefix, region string, logger *slog.Logger) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}, nil
}

func (s *S3Store) Load(ctx context.Context) (State, error) {
	master, err := s.readView(ctx, masterName)
	if err != nil {
		return State{}, err
	}

	latest, err := s.readView(ctx, latestName)
	if err != nil {
		s.logger.Warn("latest view unreadable, starting empty", "error", err)
		latest = nil
	}

	return State{Master: master, Latest: latest}, nil
}

func (s *S3Store) Save(ctx context.Context, master, latest []domain.Incident) error {
	if err := s.writeView(ctx, masterName, master); err != nil {
		return err
	}
	return s.writeView(ctx, latestName, latest)
}

func (s *S3Store) readView(ctx context.Context, name string) ([]domain.Incident, error) {
	key := path.Join(s.prefix, name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}

	var incidents []domain.Incident
	if err := json.Unmarshal(data, &incidents); err != nil {
		return nil, fmt.Errorf("parse s3://%s/%s: %w", s.bucket, key, err)
	}
	return incidents, nil
}

func (s *S3Store) writeView(ctx context.Context, name string, incidents []domain.Incident) error {
	if incidents == nil {
		incidents = []domain.Incident{}
	}
	data, err := json.Marshal(incidents)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	key := path.Join(s.prefix, name)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
