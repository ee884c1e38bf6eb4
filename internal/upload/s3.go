package upload

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Destination is a parsed s3://bucket/prefix upload target.
type Destination struct {
	Bucket string
	Prefix string
}

// ParseDestination validates an --upload URI.
func ParseDestination(uri string) (Destination, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok || rest == "" {
		return Destination{}, fmt.Errorf("upload destination must look like s3://bucket/prefix, got %q", uri)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Destination{}, fmt.Errorf("upload destination is missing a bucket: %q", uri)
	}
	return Destination{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

// Key joins the destination prefix with the export's base name.
func (d Destination) Key(file string) string {
	return path.Join(d.Prefix, filepath.Base(file))
}

// Client is a narrow S3 wrapper over the default AWS config chain.
type Client struct {
	s3 *s3.Client
}

func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	return &Client{s3: s3.NewFromConfig(cfg)}, nil
}

// UploadFile puts one export into the bucket with a content type derived
// from its extension.
func (c *Client) UploadFile(ctx context.Context, dest Destination, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening %s for upload: %w", file, err)
	}
	defer f.Close()

	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(dest.Bucket),
		Key:         aws.String(dest.Key(file)),
		Body:        f,
		ContentType: aws.String(ContentType(file)),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", file, err)
	}
	return nil
}

// ContentType maps export extensions to MIME types.
func ContentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	case ".avif":
		return "image/avif"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
