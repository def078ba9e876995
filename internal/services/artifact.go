// internal/services/artifact.go
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/manna-art/manna-backend/internal/config"
)

// UploadResult identifies a stored artifact: its content id and the URL
// it can be retrieved from.
type UploadResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ArtifactStore is the durable, append-only storage collaborator. There
// is deliberately no delete: failed operations may leave orphaned
// artifacts behind, which callers accept as permanent side effects.
type ArtifactStore interface {
	UploadFile(ctx context.Context, data []byte, contentType string, tags map[string]string) (*UploadResult, error)
	UploadMetadata(ctx context.Context, doc []byte) (*UploadResult, error)
}

// NewArtifactStore builds the backend named by cfg.Backend.
func NewArtifactStore(cfg config.ArweaveConfig) (ArtifactStore, error) {
	switch cfg.Backend {
	case "arweave":
		return NewArweaveClient(cfg), nil
	case "s3":
		return NewS3ArtifactStore(cfg)
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Backend)
	}
}

// ArweaveClient talks to an Arweave upload service that signs and posts
// transactions on our behalf, and to the public gateway for retrieval
// URLs. Transaction signing itself stays on the upload service side.
type ArweaveClient struct {
	httpClient *http.Client
	uploadURL  string
	gatewayURL string
	appName    string
	appVersion string
}

func NewArweaveClient(cfg config.ArweaveConfig) *ArweaveClient {
	uploadURL := cfg.UploadURL
	if uploadURL == "" {
		uploadURL = strings.TrimSuffix(cfg.GatewayURL, "/") + "/upload"
	}

	return &ArweaveClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		uploadURL:  uploadURL,
		gatewayURL: strings.TrimSuffix(cfg.GatewayURL, "/"),
		appName:    cfg.AppName,
		appVersion: cfg.AppVersion,
	}
}

type arweaveTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type arweaveUploadRequest struct {
	Data        string       `json:"data"` // base64
	ContentType string       `json:"contentType"`
	Tags        []arweaveTag `json:"tags,omitempty"`
}

type arweaveUploadResponse struct {
	ID string `json:"id"`
}

func (c *ArweaveClient) UploadFile(ctx context.Context, data []byte, contentType string, tags map[string]string) (*UploadResult, error) {
	reqBody := arweaveUploadRequest{
		Data:        base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
	}
	for name, value := range tags {
		reqBody.Tags = append(reqBody.Tags, arweaveTag{Name: name, Value: value})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("upload failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var uploadResp arweaveUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if uploadResp.ID == "" {
		return nil, fmt.Errorf("upload response missing transaction id")
	}

	return &UploadResult{
		ID:  uploadResp.ID,
		URL: fmt.Sprintf("%s/%s", c.gatewayURL, uploadResp.ID),
	}, nil
}

func (c *ArweaveClient) UploadMetadata(ctx context.Context, doc []byte) (*UploadResult, error) {
	return c.UploadFile(ctx, doc, "application/json", map[string]string{
		"App-Name":    c.appName,
		"App-Version": c.appVersion,
	})
}

// S3ArtifactStore is the development backend: same contract, objects in a
// bucket instead of the permanent network. Keys are date-prefixed UUIDs,
// tags become object metadata.
type S3ArtifactStore struct {
	s3Client *s3.S3
	bucket   string
	region   string
}

func NewS3ArtifactStore(cfg config.ArweaveConfig) (*S3ArtifactStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3ArtifactStore{
		s3Client: s3.New(sess),
		bucket:   cfg.S3Bucket,
		region:   cfg.AWSRegion,
	}, nil
}

func (s *S3ArtifactStore) UploadFile(ctx context.Context, data []byte, contentType string, tags map[string]string) (*UploadResult, error) {
	key := fmt.Sprintf("artifacts/%s_%s", time.Now().Format("20060102"), uuid.New().String())

	metadata := make(map[string]*string, len(tags))
	for name, value := range tags {
		metadata[name] = aws.String(value)
	}

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata:      metadata,
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		ID:  key,
		URL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
	}, nil
}

func (s *S3ArtifactStore) UploadMetadata(ctx context.Context, doc []byte) (*UploadResult, error) {
	return s.UploadFile(ctx, doc, "application/json", nil)
}
