package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Writes gzipped coupon definition files for local imports:
//
//	go run scripts/generate_sample_coupons.go
//	go run ./cmd/couponimport -org <uuid> data/coupons/*.csv.gz
//
// SAVE10 appears in both files; the import keeps the first definition.
func main() {
	dataDir := "data/coupons"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	files := map[string][][]string{
		"seasonal.csv.gz": {
			{"SAVE10", "percentage", "10"},
			{"FIVEOFF", "fixed", "5", "100"},
			{"SUMMER2024", "percentage", "15", "", "2024-09-01T00:00:00Z"},
			{"EXPIRED5", "fixed", "5", "", "2020-01-01T00:00:00Z"},
		},
		"loyalty.csv.gz": {
			{"SAVE10", "percentage", "20"},
			{"VIP25", "percentage", "25", "50"},
			{"WELCOME", "fixed", "3", "1"},
		},
	}

	for filename, records := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createCouponFile(filePath, records); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d coupons\n", filePath, len(records))
	}
}

func createCouponFile(filePath string, records [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if _, err := fmt.Fprintln(gzipWriter, "# code,type,value,limit,expiry"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write coupons: %w", err)
	}

	return nil
}
