package minio

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/phdg/internal/testutil"
	"github.com/turtacn/phdg/pkg/errors"
)

type MockObjectReader struct {
	mock.Mock
}

func (m *MockObjectReader) Open(ctx context.Context, bucket, key string) (io.ReadCloser, minio.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(minio.ObjectInfo), args.Error(2)
}

type trackingCloser struct {
	io.Reader
	closed bool
}

func (t *trackingCloser) Close() error { t.closed = true; return nil }

func TestParseSource(t *testing.T) {
	bucket, key, err := ParseSource("minio://gibbs/al-o-h/cor.txt")
	require.NoError(t, err)
	assert.Equal(t, "gibbs", bucket)
	assert.Equal(t, "al-o-h/cor.txt", key)

	for _, bad := range []string{"s3://gibbs/cor.txt", "minio://gibbs", "minio:///cor.txt", "cor.txt", "minio://gibbs/"} {
		_, _, err := ParseSource(bad)
		assert.ErrorIs(t, err, ErrInvalidSource, bad)
		assert.True(t, errors.IsCode(err, errors.ErrCodeTableSchemeUnsupported), bad)
	}
}

func TestTableLoader_Load(t *testing.T) {
	body := &trackingCloser{Reader: strings.NewReader(testutil.TableText)}
	reader := new(MockObjectReader)
	reader.On("Open", mock.Anything, "gibbs", "cor.txt").
		Return(body, minio.ObjectInfo{Key: "cor.txt", Size: int64(len(testutil.TableText))}, nil)

	tbl, err := NewTableLoader(reader, 0, nil).Load(context.Background(), "minio://gibbs/cor.txt")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 10}, tbl.Pressures())
	assert.Equal(t, []float64{0, 50, 100}, tbl.Temperatures())
	assert.Equal(t, -21.0, tbl.At(5, 50))
	assert.True(t, body.closed)
	reader.AssertExpectations(t)
}

func TestTableLoader_TooLarge(t *testing.T) {
	body := &trackingCloser{Reader: strings.NewReader(testutil.TableText)}
	reader := new(MockObjectReader)
	reader.On("Open", mock.Anything, "gibbs", "big.txt").
		Return(body, minio.ObjectInfo{Size: 1 << 30}, nil)

	_, err := NewTableLoader(reader, 1024, nil).Load(context.Background(), "minio://gibbs/big.txt")
	assert.True(t, errors.IsCode(err, errors.ErrCodeTableParseFailed))
	assert.True(t, body.closed)
}

func TestTableLoader_ParseError(t *testing.T) {
	body := &trackingCloser{Reader: strings.NewReader("P/T 0 1\n0 x y\n")}
	reader := new(MockObjectReader)
	reader.On("Open", mock.Anything, "gibbs", "bad.txt").Return(body, minio.ObjectInfo{Size: 14}, nil)

	_, err := NewTableLoader(reader, 0, nil).Load(context.Background(), "minio://gibbs/bad.txt")
	assert.True(t, errors.IsCode(err, errors.ErrCodeTableParseFailed))
}

func TestTableLoader_OpenError(t *testing.T) {
	reader := new(MockObjectReader)
	reader.On("Open", mock.Anything, "gibbs", "gone.txt").
		Return(nil, minio.ObjectInfo{}, errors.Wrap(ErrObjectNotFound, errors.ErrCodeTableSourceNotFound, "missing"))

	_, err := NewTableLoader(reader, 0, nil).Load(context.Background(), "minio://gibbs/gone.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Equal(t, 3, errors.ExitCode(err))
}

func TestTableLoader_BadSourceSkipsReader(t *testing.T) {
	reader := new(MockObjectReader)
	_, err := NewTableLoader(reader, 0, nil).Load(context.Background(), "file://cor.txt")
	assert.ErrorIs(t, err, ErrInvalidSource)
	reader.AssertNotCalled(t, "Open", mock.Anything, mock.Anything, mock.Anything)
}

//Personal.AI order the ending
