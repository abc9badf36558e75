package coupon

import (
	"context"
	"fmt"

	"tillpoint/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectGetter is the subset of the S3 client used by the loader.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Loader struct {
	client objectGetter
	bucket string
	logger zerolog.Logger
}

// NewS3Loader returns a Loader reading definition files from bucket, using the
// default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	logger = logger.With().Str("component", "coupon-s3-loader").Str("bucket", bucket).Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().Str("region", region).Msg("S3 coupon loader ready")
	return newS3Loader(s3.NewFromConfig(cfg), bucket, logger), nil
}

func newS3Loader(client objectGetter, bucket string, logger zerolog.Logger) *s3Loader {
	return &s3Loader{client: client, bucket: bucket, logger: logger}
}

// Load fetches the object at key, which must include any prefix.
func (l *s3Loader) Load(ctx context.Context, key string) ([]model.CouponRequest, error) {
	obj, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to get coupon object")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer obj.Body.Close()

	defs, err := decodeFile(ctx, obj.Body, "s3://"+l.bucket+"/"+key)
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to decode coupon object")
		return nil, err
	}

	l.logger.Info().Str("key", key).Int("definitions", len(defs)).Msg("coupon object loaded")
	return defs, nil
}

type fallbackLoader struct {
	primary Loader
	local   Loader
	prefix  string
	useS3   bool
	logger  zerolog.Logger
}

// NewFallbackLoader returns a Loader that tries s3Loader with s3Prefix prepended
// to the path and falls back to fileLoader on any error. A nil s3Loader or
// s3Enabled=false reads local files only.
func NewFallbackLoader(s3Loader, fileLoader Loader, s3Prefix string, s3Enabled bool, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		primary: s3Loader,
		local:   fileLoader,
		prefix:  s3Prefix,
		useS3:   s3Enabled && s3Loader != nil,
		logger:  logger.With().Str("component", "coupon-fallback-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
	if l.useS3 {
		key := l.prefix + filePath
		defs, err := l.primary.Load(ctx, key)
		if err == nil {
			return defs, nil
		}
		l.logger.Warn().Err(err).Str("key", key).Msg("S3 load failed, reading local file")
	}

	return l.local.Load(ctx, filePath)
}
