package storage

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// URL lifetimes for presigned media access.
const (
	GetURLTTL = 1 * time.Hour
	PutURLTTL = 15 * time.Minute
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// MediaStore resolves object-storage keys to fetchable URLs and grants
// presigned upload slots. When no endpoint is configured the client is nil
// and URLs degrade to plain /media/ paths (served by a CDN or dev proxy).
type MediaStore struct {
	cfg    Config
	client *minio.Client
}

func NewMediaStore(cfg Config) *MediaStore {
	if cfg.Endpoint == "" {
		log.Println("media: no endpoint configured, serving raw /media/ paths")
		return &MediaStore{cfg: cfg}
	}

	cl, err := minio.New(strings.TrimPrefix(cfg.Endpoint, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Printf("media: client init failed, serving raw /media/ paths: %v", err)
		return &MediaStore{cfg: cfg}
	}

	return &MediaStore{cfg: cfg, client: cl}
}

// EnsureBucket creates the media bucket if it does not exist yet.
func (s *MediaStore) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// ResolveURL returns a fetchable URL for a stored media key. Presign failures
// fall back to the raw path rather than breaking the feed.
func (s *MediaStore) ResolveURL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	if s.client == nil {
		return "/media/" + key
	}

	u, err := s.client.PresignedGetObject(ctx, s.cfg.Bucket, key, GetURLTTL, nil)
	if err != nil {
		log.Printf("media: presign get error for %s: %v", key, err)
		return "/media/" + key
	}
	return u.String()
}

// PresignUpload grants a presigned PUT URL for a new object key.
func (s *MediaStore) PresignUpload(ctx context.Context, key string) (string, error) {
	if s.client == nil {
		return "/media/" + key, nil
	}

	u, err := s.client.PresignedPutObject(ctx, s.cfg.Bucket, key, PutURLTTL)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Remove deletes a stored object (used when a post is taken down).
func (s *MediaStore) Remove(ctx context.Context, key string) error {
	if s.client == nil {
		return nil
	}
	return s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{})
}
