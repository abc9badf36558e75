package coupon

import (
	"context"
	"fmt"
	"os"

	"tillpoint/internal/model"

	"github.com/rs/zerolog"
)

type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader returns a Loader reading definition files from the local file system.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-file-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.CouponRequest, error) {
	f, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon file")
		return nil, fmt.Errorf("failed to open coupon file %s: %w", filePath, err)
	}
	defer f.Close()

	defs, err := decodeFile(ctx, f, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to decode coupon file")
		return nil, err
	}

	l.logger.Info().Str("file", filePath).Int("definitions", len(defs)).Msg("coupon file loaded")
	return defs, nil
}
