// Package minio loads free-energy tables stored as objects in MinIO or any
// S3-compatible store, addressed as minio://bucket/key.
package minio

import (
	"context"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/phdg/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phdg/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeTableSourceNotFound, "object not found")
	ErrDownloadFailed = errors.New(errors.ErrCodeStorageError, "download failed")
	ErrInvalidSource  = errors.New(errors.ErrCodeTableSchemeUnsupported, "invalid object source")
)

// MinIOAPI is the subset of *minio.Client used here.
type MinIOAPI interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// ObjectReader opens an object for reading along with its metadata.
type ObjectReader interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, minio.ObjectInfo, error)
}

// MinIOConfig holds connection parameters.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
}

// MinIOClient implements ObjectReader over a MinIOAPI.
type MinIOClient struct {
	client MinIOAPI
	config MinIOConfig
	logger logging.Logger
}

// NewMinIOClient creates a client for cfg.  No request is made until the
// first Open.
func NewMinIOClient(cfg MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "storage.minio.endpoint is required for minio:// tables")
	}
	applyDefaults(&cfg)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create minio client").WithDetail(cfg.Endpoint)
	}
	return newClientWithAPI(client, cfg, log), nil
}

func newClientWithAPI(api MinIOAPI, cfg MinIOConfig, log logging.Logger) *MinIOClient {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MinIOClient{client: api, config: cfg, logger: log.Named("minio")}
}

// Open stats the object first so a missing key surfaces as ErrObjectNotFound
// rather than on the first read.
func (c *MinIOClient) Open(ctx context.Context, bucket, key string) (io.ReadCloser, minio.ObjectInfo, error) {
	info, err := c.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, mapError(err, bucket, key)
	}
	obj, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, mapError(err, bucket, key)
	}
	c.logger.Debug("object opened",
		logging.String("bucket", bucket),
		logging.String("key", key),
		logging.Int("size", int(info.Size)),
		logging.String("etag", info.ETag))
	return obj, info, nil
}

func mapError(err error, bucket, key string) error {
	resp := minio.ToErrorResponse(err)
	detail := bucket + "/" + key
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound:
		return errors.Wrap(ErrObjectNotFound, errors.ErrCodeTableSourceNotFound, resp.Message).WithDetail(detail)
	default:
		return errors.Wrap(ErrDownloadFailed, errors.ErrCodeStorageError, err.Error()).WithDetail(detail)
	}
}

//Personal.AI order the ending
