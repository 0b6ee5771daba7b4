package minio

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/phdg/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phdg/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinIOAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	// *minio.Object cannot be built without a live connection, so only
	// failures are mocked here.
	return nil, args.Error(1)
}

type ClientTestSuite struct {
	suite.Suite
	api    *MockMinIOAPI
	client *MinIOClient
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(MockMinIOAPI)
	s.client = newClientWithAPI(s.api, MinIOConfig{Endpoint: "localhost:9000"}, logging.NewNopLogger())
}

func (s *ClientTestSuite) TestApplyDefaults() {
	cfg := MinIOConfig{}
	applyDefaults(&cfg)
	s.Equal("us-east-1", cfg.Region)
}

func (s *ClientTestSuite) TestNewMinIOClient_RequiresEndpoint() {
	_, err := NewMinIOClient(MinIOConfig{}, nil)
	s.True(errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func (s *ClientTestSuite) TestNewMinIOClient_Lazy() {
	c, err := NewMinIOClient(MinIOConfig{Endpoint: "127.0.0.1:1", AccessKey: "k", SecretKey: "s"}, nil)
	s.Require().NoError(err)
	s.NotNil(c)
}

func (s *ClientTestSuite) TestOpen_NoSuchKey() {
	s.api.On("StatObject", mock.Anything, "gibbs", "cor.txt", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist.", StatusCode: http.StatusNotFound})

	_, _, err := s.client.Open(context.Background(), "gibbs", "cor.txt")
	s.ErrorIs(err, ErrObjectNotFound)
	s.True(errors.IsCode(err, errors.ErrCodeTableSourceNotFound))
	s.Contains(err.Error(), "gibbs/cor.txt")
	s.api.AssertNotCalled(s.T(), "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClientTestSuite) TestOpen_StatFailure() {
	s.api.On("StatObject", mock.Anything, "gibbs", "cor.txt", mock.Anything).
		Return(minio.ObjectInfo{}, fmt.Errorf("connection refused"))

	_, _, err := s.client.Open(context.Background(), "gibbs", "cor.txt")
	s.ErrorIs(err, ErrDownloadFailed)
	s.True(errors.IsCode(err, errors.ErrCodeStorageError))
}

func (s *ClientTestSuite) TestOpen_GetFailure() {
	s.api.On("StatObject", mock.Anything, "gibbs", "cor.txt", mock.Anything).
		Return(minio.ObjectInfo{Key: "cor.txt", Size: 10}, nil)
	s.api.On("GetObject", mock.Anything, "gibbs", "cor.txt", mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden})

	_, _, err := s.client.Open(context.Background(), "gibbs", "cor.txt")
	s.ErrorIs(err, ErrDownloadFailed)
	s.api.AssertExpectations(s.T())
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

//Personal.AI order the ending
