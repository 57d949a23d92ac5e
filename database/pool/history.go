package pool

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// HistoryRecord is one historical request outcome: which profession was hired
// (or not) for a given job type and county. History feeds the feature-encoder
// fit and the affinity model training set.
type HistoryRecord struct {
	JobType            string
	County             string
	ProviderProfession string
	Hired              bool
}

// LoadHistory reads the request history CSV. A missing file is not an error:
// the encoder then fits from the pool alone and the affinity model falls back
// to its neutral score.
func LoadHistory(path string, logger *zap.Logger) ([]HistoryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("No request history found, continuing without it", zap.String("path", path))
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}

	var records []HistoryRecord
	rowNum := 0
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				rowNum++
				logger.Warn("Skipping malformed history row",
					zap.Int("row", rowNum), zap.Error(err))
				continue
			}
			return nil, err
		}
		rowNum++
		jobType := strings.ToLower(field(record, cols, "jobType"))
		profession := strings.ToLower(field(record, cols, "providerProfession"))
		if jobType == "" || profession == "" {
			logger.Warn("Skipping malformed history row", zap.Int("row", rowNum))
			continue
		}
		records = append(records, HistoryRecord{
			JobType:            jobType,
			County:             field(record, cols, "county"),
			ProviderProfession: profession,
			Hired:              field(record, cols, "hired") == "1",
		})
	}

	logger.Info("Request history loaded", zap.Int("records", len(records)))
	return records, nil
}
