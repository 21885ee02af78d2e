// Package assets stores supplementary recipe images in an S3-compatible
// object store. It sits alongside the declarative entity files and the
// cost engine without either one ever touching it.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client wraps a MinIO client bound to a single bucket of recipe image
// assets.
type Client struct {
	client     *minio.Client
	bucket     string
	endpoint   string
	presignTTL time.Duration
}

// New builds a Client for MinIO or any S3-compatible endpoint.
func New(endpoint, accessKey, secretKey, bucket, region string, useSSL bool, presignTTL time.Duration) (*Client, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	}
	if region != "" {
		opts.Region = region
	}

	cli, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("initialising minio client: %w", err)
	}

	return &Client{client: cli, bucket: bucket, endpoint: endpoint, presignTTL: presignTTL}, nil
}

// EnsureBucket creates the bucket if absent and turns on versioning, so
// a re-uploaded recipe image never clobbers the previous one in place.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %q on %q: %w", c.bucket, c.endpoint, err)
	}

	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket %q on %q: %w", c.bucket, c.endpoint, err)
		}
	}

	versioning := minio.BucketVersioningConfiguration{Status: minio.Enabled}
	if err := c.client.SetBucketVersioning(ctx, c.bucket, versioning); err != nil {
		return fmt.Errorf("enabling versioning for %q on %q: %w", c.bucket, c.endpoint, err)
	}

	return nil
}

// UploadRecipeImage stores an image under recipes/<slug>/<objectName>
// and returns its location.
func (c *Client) UploadRecipeImage(ctx context.Context, recipeSlug, objectName, contentType string, size int64, reader io.Reader) (string, error) {
	key := fmt.Sprintf("recipes/%s/%s", recipeSlug, objectName)
	uploadInfo, err := c.client.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}

	if uploadInfo.Location != "" {
		return uploadInfo.Location, nil
	}

	return fmt.Sprintf("s3://%s/%s", c.bucket, key), nil
}

// PresignedURL returns a time-limited URL for reading a stored object.
func (c *Client) PresignedURL(ctx context.Context, objectName string) (*url.URL, error) {
	return c.client.PresignedGetObject(ctx, c.bucket, objectName, c.presignTTL, nil)
}
