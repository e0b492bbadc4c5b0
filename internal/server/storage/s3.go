package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// S3Config describes one S3-compatible bucket.
type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	PathStyle     bool
}

// S3Presigner presigns PutObject requests for a single bucket.
type S3Presigner struct {
	bucket        string
	publicBaseURL string
	client        *s3.PresignClient
}

// NewS3Presigner builds a presigner with static credentials. An empty
// Endpoint means the regional AWS endpoint.
func NewS3Presigner(ctx context.Context, c S3Config) (*S3Presigner, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.PathStyle
	})

	return &S3Presigner{
		bucket:        c.Bucket,
		publicBaseURL: c.PublicBaseURL,
		client:        newS3PresignClient(client),
	}, nil
}

// NewR2Presigner builds a presigner for a Cloudflare R2 bucket. R2 speaks
// the S3 API on a per-account endpoint with the pseudo region "auto".
func NewR2Presigner(ctx context.Context, accountID, bucket, accessKey, secretKey, publicBaseURL string) (*S3Presigner, error) {
	return NewS3Presigner(ctx, S3Config{
		Endpoint:      fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
		Region:        "auto",
		Bucket:        bucket,
		AccessKey:     accessKey,
		SecretKey:     secretKey,
		PublicBaseURL: publicBaseURL,
	})
}

// PresignPut returns a URL that accepts a single PUT of contentType to key
// until expires elapses.
func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	req, err := presignPutObject(p.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// PublicURL is where the object will be readable once uploaded.
func (p *S3Presigner) PublicURL(key string) string {
	return joinURL(p.publicBaseURL, key)
}
