package coupon

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"testing"

	"tillpoint/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, filePath string) ([]model.CouponRequest, error)
}

func (m *mockLoader) Load(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, filePath)
	}
	return nil, errors.New("not implemented")
}

// fakeS3 serves gzipped objects from memory.
type fakeS3 struct {
	objects map[string][]byte
	keys    []string
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Key)
	f.keys = append(f.keys, aws.ToString(params.Bucket)+"/"+key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func gzipBytes(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestS3Loader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"coupons/spring.gz": gzipBytes(t, "SPRING5,fixed,5\nSPRING10,percentage,10,50\n"),
		"coupons/plain.txt": []byte("SPRING5,fixed,5\n"),
	}}
	loader := newS3Loader(client, "promo-bucket", zerolog.Nop())
	ctx := context.Background()

	t.Run("Reads gzipped object", func(t *testing.T) {
		defs, err := loader.Load(ctx, "coupons/spring.gz")

		require.NoError(t, err)
		require.Len(t, defs, 2)
		assert.Equal(t, "SPRING5", defs[0].Code)
		assert.Equal(t, 50, *defs[1].UsageLimit)
		assert.Contains(t, client.keys, "promo-bucket/coupons/spring.gz")
	})

	t.Run("Missing object", func(t *testing.T) {
		defs, err := loader.Load(ctx, "coupons/missing.gz")

		require.Error(t, err)
		assert.Nil(t, defs)
		assert.Contains(t, err.Error(), "failed to get object from S3")
	})

	t.Run("Object is not gzipped", func(t *testing.T) {
		defs, err := loader.Load(ctx, "coupons/plain.txt")

		require.Error(t, err)
		assert.Nil(t, defs)
		assert.Contains(t, err.Error(), "failed to create gzip reader")
	})
}

func TestFallbackLoader_S3Success(t *testing.T) {
	ctx := context.Background()

	s3Loader := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
			assert.Equal(t, "coupons/test.gz", filePath, "S3 key should have prefix")
			return []model.CouponRequest{{Code: "S3CODE"}}, nil
		},
	}
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
			t.Error("file loader should not be called when S3 succeeds")
			return nil, errors.New("should not be called")
		},
	}

	fallback := NewFallbackLoader(s3Loader, fileLoader, "coupons/", true, zerolog.Nop())

	defs, err := fallback.Load(ctx, "test.gz")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "S3CODE", defs[0].Code)
}

func TestFallbackLoader_S3FailsFallsBackToLocal(t *testing.T) {
	ctx := context.Background()

	s3Loader := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
			return nil, errors.New("S3 connection failed")
		},
	}
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
			assert.Equal(t, "test.gz", filePath, "local file path should not have prefix")
			return []model.CouponRequest{{Code: "LOCALCODE1"}}, nil
		},
	}

	fallback := NewFallbackLoader(s3Loader, fileLoader, "coupons/", true, zerolog.Nop())

	defs, err := fallback.Load(ctx, "test.gz")
	require.NoError(t, err)
	assert.Equal(t, "LOCALCODE1", defs[0].Code)
}

func TestFallbackLoader_LocalOnly(t *testing.T) {
	ctx := context.Background()

	failingS3 := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
			t.Error("S3 loader should not be called")
			return nil, errors.New("should not be called")
		},
	}
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
			return []model.CouponRequest{{Code: "LOCALCODE2"}}, nil
		},
	}

	tests := []struct {
		name      string
		s3Loader  Loader
		s3Enabled bool
	}{
		{name: "S3 disabled", s3Loader: failingS3, s3Enabled: false},
		{name: "S3 loader nil", s3Loader: nil, s3Enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := NewFallbackLoader(tt.s3Loader, fileLoader, "coupons/", tt.s3Enabled, zerolog.Nop())

			defs, err := fallback.Load(ctx, "test.gz")
			require.NoError(t, err)
			assert.Equal(t, "LOCALCODE2", defs[0].Code)
		})
	}
}

func TestFallbackLoader_BothFail(t *testing.T) {
	ctx := context.Background()

	s3Loader := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
			return nil, errors.New("S3 error")
		},
	}
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
			return nil, errors.New("file not found")
		},
	}

	fallback := NewFallbackLoader(s3Loader, fileLoader, "coupons/", true, zerolog.Nop())

	defs, err := fallback.Load(ctx, "test.gz")
	assert.Error(t, err)
	assert.Nil(t, defs)
	assert.Contains(t, err.Error(), "file not found")
}

func TestFallbackLoader_PrefixHandling(t *testing.T) {
	tests := []struct {
		name       string
		s3Prefix   string
		filePath   string
		expectedS3 string
	}{
		{name: "prefix with trailing slash", s3Prefix: "coupons/", filePath: "file.gz", expectedS3: "coupons/file.gz"},
		{name: "prefix without trailing slash", s3Prefix: "coupons", filePath: "file.gz", expectedS3: "couponsfile.gz"},
		{name: "empty prefix", s3Prefix: "", filePath: "file.gz", expectedS3: "file.gz"},
		{name: "nested prefix", s3Prefix: "data/coupons/prod/", filePath: "file.gz", expectedS3: "data/coupons/prod/file.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s3Loader := &mockLoader{
				loadFunc: func(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
					assert.Equal(t, tt.expectedS3, filePath)
					return nil, nil
				},
			}

			fallback := NewFallbackLoader(s3Loader, &mockLoader{}, tt.s3Prefix, true, zerolog.Nop())
			_, err := fallback.Load(context.Background(), tt.filePath)
			assert.NoError(t, err)
		})
	}
}
