package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/services/tabular"
)

const (
	DefaultRegion = "us-east-1"
	ManifestName  = "dataset.json"
)

// PutObjectAPI is the part of the S3 client the publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
}

type manifest struct {
	Country     string   `json:"country"`
	ISO3        string   `json:"iso3"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	SummaryURL  string   `json:"summary_url"`
	Recommended string   `json:"recommended,omitempty"`
	Resources   []string `json:"resources"`
}

func LoadConfig(ctx context.Context, profile, region string) (*aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(DefaultRegion),
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &awsCfg, nil
}

func NewPublisher(client PutObjectAPI, bucket, prefix string) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func NewPublisherFromConfig(cfg aws.Config, bucket, prefix string) (*Publisher, error) {
	return NewPublisher(s3.NewFromConfig(cfg), bucket, prefix)
}

// Key returns the object key of a file published for a country.
func (p *Publisher) Key(iso3, name string) string {
	return path.Join(p.prefix, strings.ToLower(iso3), name)
}

// Export uploads every table of the result followed by a dataset manifest.
// It returns the uploaded keys.
func (p *Publisher) Export(ctx context.Context, result *domain.CountryResult) ([]string, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("bucket", p.bucket).
		Str("country", result.Country.ISO3).
		Logger()

	keys := make([]string, 0, len(result.Tables)+1)
	resources := make([]string, 0, len(result.Tables))
	for _, t := range result.Tables {
		var buf bytes.Buffer
		if err := tabular.WriteCSV(&buf, t); err != nil {
			return keys, err
		}
		key := p.Key(result.Country.ISO3, t.Name)
		if err := p.put(ctx, key, "text/csv", buf.Bytes()); err != nil {
			return keys, err
		}
		logger.Debug().Str("key", key).Int("rows", len(t.Rows)).Msg("table published")
		keys = append(keys, key)
		resources = append(resources, t.Name)
	}

	body, err := json.MarshalIndent(manifest{
		Country:     result.Country.Name,
		ISO3:        result.Country.ISO3,
		Name:        result.Dataset.Name,
		Title:       result.Dataset.Title,
		Tags:        result.Dataset.Tags,
		SummaryURL:  result.Dataset.SummaryURL,
		Recommended: result.Recommended,
		Resources:   resources,
	}, "", "  ")
	if err != nil {
		return keys, fmt.Errorf("marshal manifest: %w", err)
	}
	key := p.Key(result.Country.ISO3, ManifestName)
	if err := p.put(ctx, key, "application/json", body); err != nil {
		return keys, err
	}
	keys = append(keys, key)

	logger.Info().Int("objects", len(keys)).Msg("country published")
	return keys, nil
}

func (p *Publisher) put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", p.bucket, key, err)
	}
	return nil
}
