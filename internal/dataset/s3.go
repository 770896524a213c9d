package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/metrics"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	gobreaker "github.com/sony/gobreaker/v2"
)

const s3BreakerName = "dataset-s3"

// S3Config holds the settings needed to reach an S3-compatible bucket
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// objectGetter is the subset of the MinIO client used by S3Opener
type objectGetter interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// S3Opener opens dataset files stored as objects in an S3-compatible bucket.
// Fetches go through a circuit breaker so a failing store is not hammered
// by repeated load attempts.
type S3Opener struct {
	client objectGetter
	bucket string
	prefix string
	cb     *gobreaker.CircuitBreaker[*minio.Object]
}

// NewS3Opener connects to the MinIO/S3 endpoint described by cfg
func NewS3Opener(cfg S3Config, logger *slog.Logger) (*S3Opener, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.Info("dataset source connected to object storage", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return newS3Opener(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newS3Opener(client objectGetter, bucket, prefix string, logger *slog.Logger) *S3Opener {
	metrics.CircuitBreakerState.WithLabelValues(s3BreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*minio.Object](gobreaker.Settings{
		Name:        s3BreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state transition", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &S3Opener{
		client: client,
		bucket: bucket,
		prefix: prefix,
		cb:     cb,
	}
}

// Open fetches bucket/prefix/name. The object is stat'ed up front so a missing
// key fails here rather than on the first read.
func (o *S3Opener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := path.Join(o.prefix, name)

	obj, err := o.cb.Execute(func() (*minio.Object, error) {
		obj, err := o.client.GetObject(ctx, o.bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, err
		}
		if _, err := obj.Stat(); err != nil {
			obj.Close()
			return nil, err
		}
		return obj, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("object storage unavailable: %w", err)
		}
		return nil, fmt.Errorf("failed to get object %s/%s: %w", o.bucket, key, err)
	}

	return obj, nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
