package media

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

const minMultipartSize = 5 << 20

// S3 stores files in a bucket. baseURL is the public prefix objects are served
// from (bucket website, CDN or LocalStack URL).
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

// NewS3Client creates an S3 client. When endpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewS3Client(awsCfg aws.Config, endpointURL string) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
			o.UsePathStyle = true
		}
	})
}

// NewS3 creates an S3 store with the given client and bucket name.
func NewS3(client *s3.Client, bucket, baseURL string) *S3 {
	return &S3{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		}),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Save uploads r under key name. Small payloads go through a single PutObject,
// larger ones through the multipart uploader.
func (s *S3) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	input := &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(name),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(mimetype.Detect(data).String()),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}
	if len(data) > minMultipartSize {
		_, err = s.uploader.Upload(ctx, input)
	} else {
		input.ContentLength = aws.Int64(int64(len(data)))
		_, err = s.client.PutObject(ctx, input)
	}
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return publicPath(s.baseURL, name), nil
}

// Delete removes the object behind publicPath. S3 treats a missing key as success.
func (s *S3) Delete(ctx context.Context, publicPath string) error {
	key, err := nameFromPublic(s.baseURL, publicPath)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object: %w", err)
	}
	return nil
}

// StoredName returns the name behind publicPath, or an error when the path is
// not one this store hands out.
func (s *S3) StoredName(publicPath string) (string, error) {
	return nameFromPublic(s.baseURL, publicPath)
}
