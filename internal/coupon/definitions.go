package coupon

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"tillpoint/internal/model"

	"github.com/shopspring/decimal"
)

// decodeFile reads a gzipped definition file from r. source names the file in errors.
func decodeFile(ctx context.Context, r io.Reader, source string) ([]model.CouponRequest, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gz.Close()

	defs, err := readDefinitions(ctx, gz)
	if err != nil {
		return nil, fmt.Errorf("error reading coupon file %s: %w", source, err)
	}
	return defs, nil
}

// readDefinitions parses CODE,type,value[,limit[,expiry]] records from r.
// Blank lines are skipped; a malformed record aborts the read with its line number.
func readDefinitions(ctx context.Context, r io.Reader) ([]model.CouponRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var defs []model.CouponRequest
	for line := 1; ; line++ {
		// Check context cancellation periodically
		if line%100_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read coupon record: %w", err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		def, err := parseDefinition(record)
		if err != nil {
			row, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", row, err)
		}
		defs = append(defs, def)
	}

	return defs, nil
}

func parseDefinition(record []string) (model.CouponRequest, error) {
	if len(record) < 3 || len(record) > 5 {
		return model.CouponRequest{}, fmt.Errorf("expected 3 to 5 fields, got %d", len(record))
	}

	value, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return model.CouponRequest{}, fmt.Errorf("invalid discount value %q: %w", record[2], err)
	}

	def := model.CouponRequest{
		Code:          NormaliseCode(record[0]),
		DiscountType:  model.DiscountType(strings.ToLower(strings.TrimSpace(record[1]))),
		DiscountValue: value,
		Status:        model.CouponActive,
	}

	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		limit, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil {
			return model.CouponRequest{}, fmt.Errorf("invalid usage limit %q: %w", record[3], err)
		}
		def.UsageLimitEnabled = true
		def.UsageLimit = &limit
	}

	if len(record) > 4 && strings.TrimSpace(record[4]) != "" {
		expiry, err := time.Parse(time.RFC3339, strings.TrimSpace(record[4]))
		if err != nil {
			return model.CouponRequest{}, fmt.Errorf("invalid expiry date %q: %w", record[4], err)
		}
		def.ExpiryDate = &expiry
	}

	return def, nil
}
