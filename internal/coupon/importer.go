package coupon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tillpoint/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ImportResult summarises a bulk coupon import.
type ImportResult struct {
	Read     int
	Inserted int
	Skipped  int
}

// Importer loads coupon definition files and stores them for one organization.
type Importer struct {
	loader Loader
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

// NewImporter creates a new coupon importer.
func NewImporter(loader Loader, store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "coupon-importer").Logger(),
	}
}

// Import loads every file concurrently, validates each definition and stores
// the result for orgID. Codes repeated across files keep their first
// occurrence in file order. Existing codes are counted as skipped.
func (im *Importer) Import(ctx context.Context, orgID uuid.UUID, filePaths []string) (ImportResult, error) {
	im.logger.Info().
		Str("organization_id", orgID.String()).
		Int("file_count", len(filePaths)).
		Msg("importing coupon files")

	type loadResult struct {
		defs []model.CouponRequest
		err  error
	}

	results := make([]loadResult, len(filePaths))
	var wg sync.WaitGroup

	for i, filePath := range filePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			defs, err := im.loader.Load(ctx, path)
			results[index] = loadResult{defs: defs, err: err}
		}(i, filePath)
	}

	wg.Wait()

	now := im.now().UTC()
	seen := make(map[string]struct{})
	var coupons []model.Coupon
	var res ImportResult

	for i, result := range results {
		if result.err != nil {
			im.logger.Error().
				Err(result.err).
				Str("file", filePaths[i]).
				Msg("failed to load coupon file")
			return ImportResult{}, fmt.Errorf("failed to load coupon file %s: %w", filePaths[i], result.err)
		}

		for _, def := range result.defs {
			res.Read++

			c, err := Build(orgID, def, now)
			if err != nil {
				return ImportResult{}, fmt.Errorf("invalid coupon %q in %s: %w", def.Code, filePaths[i], err)
			}
			if _, dup := seen[c.Code]; dup {
				res.Skipped++
				continue
			}
			seen[c.Code] = struct{}{}
			coupons = append(coupons, *c)
		}
	}

	if len(coupons) > 0 {
		inserted, err := im.store.Import(ctx, orgID, coupons)
		if err != nil {
			im.logger.Error().Err(err).Msg("failed to store imported coupons")
			return ImportResult{}, fmt.Errorf("failed to store imported coupons: %w", err)
		}
		res.Inserted = inserted
		res.Skipped += len(coupons) - inserted
	}

	im.logger.Info().
		Int("read", res.Read).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Msg("coupon import complete")

	return res, nil
}
