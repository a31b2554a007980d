// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage re-hosts generated wallpapers on S3-compatible object
// storage, so history and cache entries do not depend on short-lived vendor
// URLs. It wraps the AWS SDK v2 with path-style addressing.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

const (
	keyPrefix     = "wallpapers/"
	maxSourceSize = 25 << 20
	fetchTimeout  = 30 * time.Second
)

// Client uploads wallpapers to one public bucket.
type Client struct {
	s3        *s3.Client
	http      *http.Client
	bucket    string
	endpoint  string
	publicURL string
	now       func() time.Time
}

// New creates an S3 storage client. Returns (nil, nil) if endpoint or
// credentials are empty, allowing the app to run without re-hosting.
func New(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required when S3 is configured")
	}

	endpoint = strings.TrimRight(endpoint, "/")
	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        s3Client,
		http:      &http.Client{Timeout: fetchTimeout},
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}, nil
}

// Rehost uploads a generated image and returns its permanent public URL.
// Inline data is uploaded as-is; otherwise the image is downloaded from
// sourceURL first.
func (c *Client) Rehost(ctx context.Context, sourceURL string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		var err error
		data, contentType, err = c.download(ctx, sourceURL)
		if err != nil {
			return "", err
		}
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := c.objectKey(contentType)
	if err := c.upload(ctx, key, contentType, data); err != nil {
		return "", err
	}
	return c.FileURL(key), nil
}

func (c *Client) objectKey(contentType string) string {
	return keyPrefix + c.now().UTC().Format("2006/01/") + uuid.NewString() + extensionFromType(contentType)
}

func (c *Client) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("rehost request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("rehost fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("rehost fetch: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceSize))
	if err != nil {
		return nil, "", fmt.Errorf("rehost read: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) upload(ctx context.Context, key, contentType string, data []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// FileURL returns the public URL for an object key. Uses the configured
// public URL if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
