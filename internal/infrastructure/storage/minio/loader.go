package minio

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/turtacn/phdg/internal/domain/gibbs"
	"github.com/turtacn/phdg/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phdg/pkg/errors"
)

// Scheme is the URL scheme of object-store table sources.
const Scheme = "minio"

// DefaultMaxTableSize bounds the bytes read for one table.
const DefaultMaxTableSize int64 = 64 << 20

// ParseSource splits minio://bucket/key into its bucket and key.
func ParseSource(source string) (bucket, key string, err error) {
	u, perr := url.Parse(source)
	if perr != nil || u.Scheme != Scheme {
		return "", "", errors.Wrap(ErrInvalidSource, errors.ErrCodeTableSchemeUnsupported, "expected minio://bucket/key").
			WithDetail(source)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", errors.Wrap(ErrInvalidSource, errors.ErrCodeTableSchemeUnsupported, "bucket and key are required").
			WithDetail(source)
	}
	return u.Host, key, nil
}

// TableLoader loads free-energy tables from object storage.
type TableLoader struct {
	reader  ObjectReader
	logger  logging.Logger
	maxSize int64
}

// NewTableLoader wraps reader.  maxSize ≤ 0 selects DefaultMaxTableSize.
func NewTableLoader(reader ObjectReader, maxSize int64, log logging.Logger) *TableLoader {
	if maxSize <= 0 {
		maxSize = DefaultMaxTableSize
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &TableLoader{reader: reader, logger: log, maxSize: maxSize}
}

// Load fetches and parses the table at source.
func (l *TableLoader) Load(ctx context.Context, source string) (*gibbs.Table, error) {
	bucket, key, err := ParseSource(source)
	if err != nil {
		return nil, err
	}

	rc, info, err := l.reader.Open(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if info.Size > l.maxSize {
		return nil, errors.Newf(errors.ErrCodeTableParseFailed,
			"table object is %d bytes, limit is %d", info.Size, l.maxSize).WithDetail(source)
	}

	t, err := gibbs.Parse(io.LimitReader(rc, l.maxSize))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to parse table").WithDetail(source)
	}
	l.logger.Debug("table loaded", logging.String("source", source), logging.String("table", t.String()))
	return t, nil
}

//Personal.AI order the ending
