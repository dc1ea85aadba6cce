// Package bucket adapts S3-compatible object storage to the listing and
// content interfaces the contest service consumes.
package bucket

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/contestkit/arena/internal/domain"
)

// Config holds the connection settings for one bucket.
type Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	LinkExpiry time.Duration
}

// Client talks to an S3-compatible bucket. Object keys double as the
// opaque artifact ids in the catalog.
type Client struct {
	mc         *minio.Client
	bucket     string
	linkExpiry time.Duration
}

// New creates a bucket client.
func New(cfg Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create bucket client: %w", err)
	}

	expiry := cfg.LinkExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Client{mc: mc, bucket: cfg.Bucket, linkExpiry: expiry}, nil
}

// List returns the metadata of every object under prefix. The object
// channel is fully drained before returning; a partial listing is never
// handed to the caller. Statement documents get a presigned view link.
func (c *Client) List(ctx context.Context, prefix string) ([]domain.FileInfo, error) {
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}

	var files []domain.FileInfo
	for obj := range c.mc.ListObjects(ctx, c.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects under %s: %w", prefix, obj.Err)
		}

		info := domain.FileInfo{
			ID:       obj.Key,
			Name:     path.Base(obj.Key),
			MIMEType: obj.ContentType,
		}
		if strings.EqualFold(path.Ext(obj.Key), ".pdf") {
			link, err := c.ViewURL(ctx, obj.Key)
			if err != nil {
				return nil, err
			}
			info.ViewLink = link
		}
		files = append(files, info)
	}
	return files, nil
}

// Fetch reads the full content of one object.
func (c *Client) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, fileID, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", fileID, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", fileID, err)
	}
	return data, nil
}

// ViewURL returns a presigned direct-open link for an object.
func (c *Client) ViewURL(ctx context.Context, fileID string) (string, error) {
	u, err := c.mc.PresignedGetObject(ctx, c.bucket, fileID, c.linkExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", fileID, err)
	}
	return u.String(), nil
}
