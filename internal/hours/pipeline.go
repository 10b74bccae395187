package hours

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrEmptyInput is returned when the import input contains no header row.
var ErrEmptyInput = errors.New("empty input: missing header row")

type RowStatus int

const (
	RowUpdated RowStatus = iota
	RowNotFound
	RowFailed
)

// RowResult is the classified outcome of one data row
type RowResult struct {
	Status RowStatus
	Reason string
}

// ImportOutcome is the reconciliation report for one import run
type ImportOutcome struct {
	Total       int     `json:"total"`
	Updated     int     `json:"updated"`
	NotFound    int     `json:"not_found"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"` // updated/total*100, one decimal
}

// exportHeader is the fixed column order of exports. Exports feed back into
// ImportFromTable unchanged; columns the importer does not recognize
// (address, phone, ...) are ignored on the way back in.
var exportHeader = []string{
	"shop_id", "shop_name", "address", "phone", "city", "province",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"is_24_hours", "is_open_now",
}

// Service converts between the tabular hours representation and the stored
// per-shop representation, in both directions, with per-row fault isolation
// on import.
type Service struct {
	store ShopStore

	// OnRow, when set, is called after every data row with the number of
	// rows processed so far. Used for job progress reporting.
	OnRow func(processed int, res RowResult)
}

// NewService creates a new hours sync service
func NewService(store ShopStore) *Service {
	return &Service{store: store}
}

// ImportFromTable parses CSV input and applies one hours update per data row.
// Row-level faults, including rows the CSV parser rejects, are absorbed into
// the outcome counters and never abort the run; only an unreadable input
// surfaces as an error.
func (s *Service) ImportFromTable(ctx context.Context, r io.Reader) (*ImportOutcome, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows may have fewer fields than the header

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV header: %w", err)
	}

	cols := headerIndex(header)

	outcome := &ImportOutcome{}
	for row := 2; ; row++ {
		// Cooperative cancellation between rows; the run is resumable at
		// row granularity because re-importing a row is idempotent.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		var res RowResult
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to read CSV: %w", err)
			}
			// A malformed row fails on its own; the reader resumes with
			// the next record.
			res = RowResult{Status: RowFailed, Reason: err.Error()}
		} else {
			res = s.processRow(ctx, cols, record)
		}

		outcome.Total++
		switch res.Status {
		case RowUpdated:
			outcome.Updated++
		case RowNotFound:
			outcome.NotFound++
		case RowFailed:
			outcome.Failed++
			log.Warn().Int("row", row).Str("reason", res.Reason).Msg("Hours import row failed")
		}

		if s.OnRow != nil {
			s.OnRow(outcome.Total, res)
		}
	}

	if outcome.Total > 0 {
		outcome.SuccessRate = math.Round(float64(outcome.Updated)/float64(outcome.Total)*1000) / 10
	}

	return outcome, nil
}

// processRow validates, normalizes, resolves and writes a single row
func (s *Service) processRow(ctx context.Context, cols map[string]int, record []string) RowResult {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return "" // missing trailing fields read as empty
		}
		return strings.TrimSpace(record[idx])
	}

	shopID := field("shop_id")
	shopName := field("shop_name")
	if shopID == "" && shopName == "" {
		return RowResult{Status: RowFailed, Reason: "row has neither shop_id nor shop_name"}
	}

	upd := HoursUpdate{
		Days:        make(map[string]string),
		LastUpdated: time.Now(),
	}
	for _, day := range Days {
		if _, ok := cols[day]; !ok {
			continue
		}
		// An empty cell omits the day from the update, preserving the
		// stored value.
		if value := Normalize(field(day)); value != "" {
			upd.Days[day] = value
		}
	}
	if _, ok := cols["is_24_hours"]; ok {
		is24 := ParseBoolFlag(field("is_24_hours"))
		upd.Is24Hours = &is24
	}

	var (
		affected int64
		err      error
	)
	if shopID != "" {
		affected, err = s.store.UpdateHoursByID(ctx, shopID, upd)
	} else {
		affected, err = s.store.UpdateHoursByName(ctx, shopName, upd)
	}

	switch {
	case err != nil:
		return RowResult{Status: RowFailed, Reason: err.Error()}
	case affected == 0:
		return RowResult{Status: RowNotFound}
	}
	return RowResult{Status: RowUpdated}
}

// ExportToTable writes the selected shops as CSV, header included, ordered by
// display name ascending. A store read failure aborts the whole export.
func (s *Service) ExportToTable(ctx context.Context, w io.Writer, sel Selector) error {
	shops, err := s.store.ListForExport(ctx, sel)
	if err != nil {
		return fmt.Errorf("failed to read shops for export: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, shop := range shops {
		record := make([]string, 0, len(exportHeader))
		record = append(record, shop.ID, shop.Name, shop.Address, shop.Phone, shop.City, shop.Province)
		record = append(record, shop.Days[:]...)
		record = append(record, strconv.FormatBool(shop.Is24Hours), formatTriState(shop.IsOpenNow))

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// headerIndex maps recognized lowercase column names to their position.
// The first occurrence wins when a name repeats.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if _, exists := cols[key]; !exists {
			cols[key] = i
		}
	}
	return cols
}

func formatTriState(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
