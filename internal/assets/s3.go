package assets

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/BradenHooton/marquee/internal/config"
	"github.com/BradenHooton/marquee/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// S3Store lists avatar folders and images from an S3-compatible bucket
type S3Store struct {
	client        s3.ListObjectsV2APIClient
	bucket        string
	rootPrefix    string
	publicBaseURL string
}

// NewS3Store builds an S3 client from cfg. Static credentials and a custom
// endpoint are used when set, for MinIO and similar hosts.
func NewS3Store(ctx context.Context, cfg *config.AvatarConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return NewS3StoreWithClient(client, cfg.Bucket, cfg.RootPrefix, publicBaseURL), nil
}

func NewS3StoreWithClient(client s3.ListObjectsV2APIClient, bucket, rootPrefix, publicBaseURL string) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        bucket,
		rootPrefix:    strings.Trim(rootPrefix, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// ListFolders returns the immediate subfolders of the root prefix
func (s *S3Store) ListFolders(ctx context.Context) ([]models.AvatarFolder, error) {
	prefix := ""
	if s.rootPrefix != "" {
		prefix = s.rootPrefix + "/"
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	folders := make([]models.AvatarFolder, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list avatar folders: %w", err)
		}

		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name == "" {
				continue
			}
			folders = append(folders, models.AvatarFolder{
				Name: name,
				Path: prefix + name,
			})
		}
	}

	return folders, nil
}

// ListImages returns every image whose key starts with folderPath
func (s *S3Store) ListImages(ctx context.Context, folderPath string) ([]models.AvatarImage, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(strings.TrimPrefix(folderPath, "/")),
	})

	images := make([]models.AvatarImage, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list avatar images: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			ext := strings.ToLower(path.Ext(key))
			if !imageExtensions[ext] {
				continue
			}

			images = append(images, models.AvatarImage{
				URL:  s.objectURL(key),
				ID:   strings.TrimSuffix(key, path.Ext(key)),
				Name: strings.TrimSuffix(path.Base(key), path.Ext(key)),
			})
		}
	}

	return images, nil
}

func (s *S3Store) objectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicBaseURL + "/" + strings.Join(segments, "/")
}
