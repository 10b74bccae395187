package hours

import (
	"context"
	"time"
)

// HoursUpdate is the partial field set applied to one shop. Only the days
// present in the map change; omitted days keep their stored value.
type HoursUpdate struct {
	Days        map[string]string // day column name -> canonical value
	Is24Hours   *bool             // nil when the input column was absent
	LastUpdated time.Time
}

// ExportShop is the read projection of one shop for export
type ExportShop struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	City      string
	Province  string
	Days      [7]string // Monday..Sunday
	Is24Hours bool
	IsOpenNow *bool // nil = unknown
}

// Selector narrows which shops an export covers. The zero value selects all.
type Selector struct {
	City     string
	Province string
}

// ShopStore is the backing record store the pipeline reads and writes.
// Updates return the number of records affected; zero means the row
// resolved to no shop.
type ShopStore interface {
	// ListForExport returns the selected shops ordered by display name
	// ascending (ties broken by ID so repeated exports are byte-identical).
	ListForExport(ctx context.Context, sel Selector) ([]ExportShop, error)
	UpdateHoursByID(ctx context.Context, id string, upd HoursUpdate) (int64, error)
	UpdateHoursByName(ctx context.Context, name string, upd HoursUpdate) (int64, error)
}
