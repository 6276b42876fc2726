package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "idea2app/internal/artifact"
)

// Archive keeps a copy of every artifact version outside the primary store.
type Archive interface {
	Put(ctx context.Context, a domain.Artifact) error
	Get(ctx context.Context, projectID, id string) (domain.Artifact, error)
	List(ctx context.Context, projectID string) ([]string, error)
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store archives artifacts as JSON objects keyed
// <project>/<type>/<id>.json in an S3-compatible bucket.
type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucketName: bucket, region: region}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("store is nil")
	}
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) Put(ctx context.Context, a domain.Artifact) error {
	if strings.TrimSpace(a.ProjectID) == "" || strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("project_id and id are required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucketName, objectKey(a.ProjectID, string(a.Type), a.ID), bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"artifact-type": string(a.Type),
			"generated-at":  a.Metadata.GeneratedAt.UTC().Format(time.RFC3339),
		},
	})
	return err
}

// Get finds an archived artifact by id within a project.
func (s *S3Store) Get(ctx context.Context, projectID, id string) (domain.Artifact, error) {
	keys, err := s.List(ctx, projectID)
	if err != nil {
		return domain.Artifact{}, err
	}
	suffix := "/" + strings.TrimSpace(id) + ".json"
	for _, rel := range keys {
		if !strings.HasSuffix("/"+rel, suffix) {
			continue
		}
		obj, err := s.client.GetObject(ctx, s.bucketName, strings.TrimSpace(projectID)+"/"+rel, minio.GetObjectOptions{})
		if err != nil {
			return domain.Artifact{}, err
		}
		defer obj.Close()
		data, err := io.ReadAll(obj)
		if err != nil {
			errResp := minio.ToErrorResponse(err)
			if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
				return domain.Artifact{}, ErrNotFound
			}
			return domain.Artifact{}, err
		}
		var a domain.Artifact
		if err := json.Unmarshal(data, &a); err != nil {
			return domain.Artifact{}, fmt.Errorf("decode archived artifact %s: %w", id, err)
		}
		return a, nil
	}
	return domain.Artifact{}, ErrNotFound
}

// List returns archived object keys for a project relative to the project
// prefix, sorted.
func (s *S3Store) List(ctx context.Context, projectID string) ([]string, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	prefix := projectID + "/"
	keys := make([]string, 0, 16)
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key == "" {
			continue
		}
		keys = append(keys, strings.TrimPrefix(obj.Key, prefix))
	}
	sort.Strings(keys)
	return keys, nil
}

func objectKey(projectID, typ, id string) string {
	return strings.TrimSpace(projectID) + "/" + strings.TrimSpace(typ) + "/" + strings.TrimSpace(id) + ".json"
}
