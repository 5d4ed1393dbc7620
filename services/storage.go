package services

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"github.com/techagentng/earnly/config"
)

// Storage puts a public object and returns its URL.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type S3Storage struct {
	Client *s3.Client
	Bucket string
	Region string
}

func NewS3Storage(c *config.Config) (*S3Storage, error) {
	if c.AWSBucket == "" {
		return nil, errors.New("S3 bucket name is not configured")
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(c.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AWSAccessKeyID,
			c.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load AWS config")
	}
	return &S3Storage{
		Client: s3.NewFromConfig(cfg),
		Bucket: c.AWSBucket,
		Region: c.AWSRegion,
	}, nil
}

func (s *S3Storage) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload file to S3")
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key), nil
}

// MemoryStorage keeps objects in memory, for local runs without a bucket.
type MemoryStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{BaseURL: baseURL, objects: map[string][]byte{}}
}

func (m *MemoryStorage) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	return fmt.Sprintf("%s/%s", m.BaseURL, key), nil
}

func (m *MemoryStorage) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}

func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
