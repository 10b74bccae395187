package hours

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"
)

type fakeShop struct {
	id        string
	name      string
	address   string
	phone     string
	city      string
	province  string
	days      map[string]string
	is24      bool
	isOpenNow *bool

	lastUpdated time.Time
}

type fakeStore struct {
	shops    []*fakeShop
	readErr  error
	writeErr error
	writes   int
}

func newFakeShop(id, name string) *fakeShop {
	return &fakeShop{id: id, name: name, days: make(map[string]string)}
}

func (st *fakeStore) ListForExport(ctx context.Context, sel Selector) ([]ExportShop, error) {
	if st.readErr != nil {
		return nil, st.readErr
	}

	sorted := make([]*fakeShop, len(st.shops))
	copy(sorted, st.shops)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].name != sorted[j].name {
			return sorted[i].name < sorted[j].name
		}
		return sorted[i].id < sorted[j].id
	})

	out := make([]ExportShop, 0, len(sorted))
	for _, sh := range sorted {
		exp := ExportShop{
			ID:        sh.id,
			Name:      sh.name,
			Address:   sh.address,
			Phone:     sh.phone,
			City:      sh.city,
			Province:  sh.province,
			Is24Hours: sh.is24,
			IsOpenNow: sh.isOpenNow,
		}
		for i, day := range Days {
			exp.Days[i] = sh.days[day]
		}
		out = append(out, exp)
	}
	return out, nil
}

func (st *fakeStore) UpdateHoursByID(ctx context.Context, id string, upd HoursUpdate) (int64, error) {
	if st.writeErr != nil {
		return 0, st.writeErr
	}
	for _, sh := range st.shops {
		if sh.id == id {
			st.apply(sh, upd)
			return 1, nil
		}
	}
	return 0, nil
}

func (st *fakeStore) UpdateHoursByName(ctx context.Context, name string, upd HoursUpdate) (int64, error) {
	if st.writeErr != nil {
		return 0, st.writeErr
	}

	// Exact match, lowest id wins when names collide
	var match *fakeShop
	for _, sh := range st.shops {
		if sh.name == name && (match == nil || sh.id < match.id) {
			match = sh
		}
	}
	if match == nil {
		return 0, nil
	}
	st.apply(match, upd)
	return 1, nil
}

func (st *fakeStore) apply(sh *fakeShop, upd HoursUpdate) {
	st.writes++
	for day, value := range upd.Days {
		sh.days[day] = value
	}
	if upd.Is24Hours != nil {
		sh.is24 = *upd.Is24Hours
	}
	sh.lastUpdated = upd.LastUpdated
}

func TestImportConcreteScenario(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{newFakeShop("abc-123", "Main Street Tires")}}
	store.shops[0].days["wednesday"] = "10:00 AM - 4:00 PM"

	svc := NewService(store)
	input := "shop_id,monday,tuesday\nabc-123,9:00 AM - 6:00 PM,Closed\n"

	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportFromTable returned error: %v", err)
	}

	if outcome.Total != 1 || outcome.Updated != 1 || outcome.NotFound != 0 || outcome.Failed != 0 {
		t.Errorf("outcome = %+v, expected total=1 updated=1 not_found=0 failed=0", outcome)
	}
	if outcome.SuccessRate != 100.0 {
		t.Errorf("success rate = %v, expected 100.0", outcome.SuccessRate)
	}

	shop := store.shops[0]
	if shop.days["monday"] != "9:00 AM - 6:00 PM" {
		t.Errorf("monday = %q, expected time range", shop.days["monday"])
	}
	if shop.days["tuesday"] != Closed {
		t.Errorf("tuesday = %q, expected %q", shop.days["tuesday"], Closed)
	}
	if shop.days["wednesday"] != "10:00 AM - 4:00 PM" {
		t.Errorf("wednesday = %q, expected stored value preserved", shop.days["wednesday"])
	}
	if shop.lastUpdated.IsZero() {
		t.Error("hours_last_updated was not refreshed")
	}
}

func TestImportPartialFailureIsolation(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{
		newFakeShop("s1", "Shop One"),
		newFakeShop("s2", "Shop Two"),
		newFakeShop("s4", "Shop Four"),
		newFakeShop("s5", "Shop Five"),
	}}
	svc := NewService(store)

	var rowCalls int
	svc.OnRow = func(processed int, res RowResult) { rowCalls = processed }

	input := strings.Join([]string{
		"shop_id,shop_name,monday",
		"s1,,Closed",
		"s2,,Closed",
		",,Closed", // neither shop_id nor shop_name
		"s4,,Closed",
		"s5,,Closed",
	}, "\n")

	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportFromTable returned error: %v", err)
	}

	if outcome.Total != 5 {
		t.Errorf("total = %d, expected 5", outcome.Total)
	}
	if outcome.Failed != 1 {
		t.Errorf("failed = %d, expected 1", outcome.Failed)
	}
	if outcome.Updated != 4 {
		t.Errorf("updated = %d, expected 4 (rows around the bad one still processed)", outcome.Updated)
	}
	if rowCalls != 5 {
		t.Errorf("OnRow saw %d rows, expected 5", rowCalls)
	}
}

func TestImportMalformedRowIsolation(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{
		newFakeShop("s1", "Shop One"),
		newFakeShop("s3", "Shop Three"),
	}}
	svc := NewService(store)

	input := strings.Join([]string{
		"shop_id,monday",
		"s1,Closed",
		`s2,ab"cd`, // bare quote in an unquoted field
		"s3,Closed",
	}, "\n")

	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("a malformed row must not abort the run: %v", err)
	}

	if outcome.Total != 3 || outcome.Updated != 2 || outcome.Failed != 1 {
		t.Errorf("outcome = %+v, expected total=3 updated=2 failed=1", outcome)
	}
	if store.shops[0].days["monday"] != Closed || store.shops[1].days["monday"] != Closed {
		t.Error("rows around the malformed one were not applied")
	}
}

func TestImportHeaderWithByteOrderMark(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{newFakeShop("s1", "Shop One")}}
	svc := NewService(store)

	input := "\uFEFFshop_id,monday\ns1,Closed\n"
	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportFromTable returned error: %v", err)
	}
	if outcome.Updated != 1 {
		t.Fatalf("updated = %d, expected BOM-prefixed header column to be recognized", outcome.Updated)
	}
}

func TestImportNotFoundAccounting(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{newFakeShop("s1", "Shop One")}}
	svc := NewService(store)

	input := "shop_name,monday\nNo Such Shop,Closed\n"
	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportFromTable returned error: %v", err)
	}

	if outcome.NotFound != 1 || outcome.Failed != 0 {
		t.Errorf("outcome = %+v, expected not_found=1 failed=0", outcome)
	}
	if store.writes != 0 {
		t.Errorf("store saw %d writes, expected none for unresolved row", store.writes)
	}
}

func TestImportStoreWriteError(t *testing.T) {
	store := &fakeStore{
		shops:    []*fakeShop{newFakeShop("s1", "Shop One")},
		writeErr: errors.New("connection reset"),
	}
	svc := NewService(store)

	input := "shop_id,monday\ns1,Closed\n"
	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("row-level store error must not abort the run: %v", err)
	}
	if outcome.Failed != 1 || outcome.Updated != 0 {
		t.Errorf("outcome = %+v, expected failed=1 updated=0", outcome)
	}
}

func TestImportEmptyInput(t *testing.T) {
	svc := NewService(&fakeStore{})
	_, err := svc.ImportFromTable(context.Background(), strings.NewReader(""))
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestImportCancellation(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{newFakeShop("s1", "Shop One")}}
	svc := NewService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := "shop_id,monday\ns1,Closed\n"
	_, err := svc.ImportFromTable(ctx, strings.NewReader(input))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestImportUnrecognizedColumnsIgnored(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{newFakeShop("s1", "Shop One")}}
	svc := NewService(store)

	input := "SHOP_ID,Monday,fax_number\ns1,CLOSED,555-0000\n"
	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportFromTable returned error: %v", err)
	}
	if outcome.Updated != 1 {
		t.Fatalf("updated = %d, expected 1 (headers are case-insensitive)", outcome.Updated)
	}
	if store.shops[0].days["monday"] != Closed {
		t.Errorf("monday = %q, expected %q", store.shops[0].days["monday"], Closed)
	}
}

func TestImport24HourFlagColumnAbsent(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{newFakeShop("s1", "Shop One")}}
	store.shops[0].is24 = true
	svc := NewService(store)

	input := "shop_id,monday\ns1,Closed\n"
	if _, err := svc.ImportFromTable(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("ImportFromTable returned error: %v", err)
	}
	if !store.shops[0].is24 {
		t.Error("is_24_hours changed although the column was absent")
	}
}

func TestImportNameAmbiguityLowestIDWins(t *testing.T) {
	first := newFakeShop("a-1", "Twin Tires")
	second := newFakeShop("b-2", "Twin Tires")
	store := &fakeStore{shops: []*fakeShop{second, first}}
	svc := NewService(store)

	input := "shop_name,monday\nTwin Tires,Closed\n"
	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportFromTable returned error: %v", err)
	}
	if outcome.Updated != 1 {
		t.Fatalf("updated = %d, expected 1", outcome.Updated)
	}
	if first.days["monday"] != Closed {
		t.Error("lowest-id match was not the one updated")
	}
	if second.days["monday"] != "" {
		t.Error("more than one record updated for an ambiguous name")
	}
}

func TestImportSuccessRateRounding(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{newFakeShop("s1", "Shop One")}}
	svc := NewService(store)

	input := strings.Join([]string{
		"shop_id,monday",
		"s1,Closed",
		"missing-1,Closed",
		"missing-2,Closed",
	}, "\n")

	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportFromTable returned error: %v", err)
	}
	if outcome.SuccessRate != 33.3 {
		t.Errorf("success rate = %v, expected 33.3", outcome.SuccessRate)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	open := true
	alpha := newFakeShop("id-1", `Bob's "Best" Tires, Inc.`)
	alpha.address = "12 King St W, Suite 3"
	alpha.city = "Toronto"
	alpha.province = "ON"
	alpha.days["monday"] = "9:00 AM - 6:00 PM"
	alpha.days["tuesday"] = Closed
	alpha.days["sunday"] = Unknown
	alpha.is24 = false
	alpha.isOpenNow = &open

	beta := newFakeShop("id-2", "Zenith Tire & Auto")
	beta.city = "Vancouver"
	beta.province = "BC"
	beta.days["saturday"] = Open24
	beta.is24 = true

	store := &fakeStore{shops: []*fakeShop{beta, alpha}}
	svc := NewService(store)

	var first bytes.Buffer
	if err := svc.ExportToTable(context.Background(), &first, Selector{}); err != nil {
		t.Fatalf("ExportToTable returned error: %v", err)
	}

	// Names before Zenith sort first regardless of insertion order
	lines := strings.Split(strings.TrimRight(first.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("export has %d lines, expected header + 2 rows", len(lines))
	}
	if !strings.Contains(lines[1], `"Bob's ""Best"" Tires, Inc."`) {
		t.Errorf("embedded quotes/commas not escaped: %q", lines[1])
	}

	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(first.String()))
	if err != nil {
		t.Fatalf("ImportFromTable returned error: %v", err)
	}
	if outcome.Updated != 2 || outcome.NotFound != 0 || outcome.Failed != 0 {
		t.Errorf("round-trip outcome = %+v, expected updated=2 not_found=0 failed=0", outcome)
	}

	var second bytes.Buffer
	if err := svc.ExportToTable(context.Background(), &second, Selector{}); err != nil {
		t.Fatalf("second ExportToTable returned error: %v", err)
	}
	if first.String() != second.String() {
		t.Errorf("export after round-trip import differs:\nbefore: %q\nafter:  %q", first.String(), second.String())
	}
}

func TestImportIdempotence(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{newFakeShop("s1", "Shop One")}}
	svc := NewService(store)

	input := "shop_id,monday,tuesday,is_24_hours\ns1,9:00 AM - 6:00 PM,closed,true\n"

	if _, err := svc.ImportFromTable(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstDays := map[string]string{}
	for k, v := range store.shops[0].days {
		firstDays[k] = v
	}
	firstStamp := store.shops[0].lastUpdated

	if _, err := svc.ImportFromTable(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("second run: %v", err)
	}

	for k, v := range firstDays {
		if store.shops[0].days[k] != v {
			t.Errorf("day %s changed between identical runs: %q -> %q", k, v, store.shops[0].days[k])
		}
	}
	if !store.shops[0].is24 {
		t.Error("is_24_hours lost between runs")
	}
	if store.shops[0].lastUpdated.Before(firstStamp) {
		t.Error("hours_last_updated went backwards")
	}
}

func TestExportStoreReadErrorAborts(t *testing.T) {
	store := &fakeStore{readErr: errors.New("store unavailable")}
	svc := NewService(store)

	var out bytes.Buffer
	if err := svc.ExportToTable(context.Background(), &out, Selector{}); err == nil {
		t.Fatal("expected export to surface the store read error")
	}
	if out.Len() != 0 {
		t.Errorf("partial output produced on read failure: %q", out.String())
	}
}

func TestImportQuotedFieldsWithEmbeddedDelimiters(t *testing.T) {
	store := &fakeStore{shops: []*fakeShop{newFakeShop("s1", `Bob's "Best" Tires, Inc.`)}}
	svc := NewService(store)

	input := "shop_name,monday\n\"Bob's \"\"Best\"\" Tires, Inc.\",\"9:00 AM - 6:00 PM\"\n"
	outcome, err := svc.ImportFromTable(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportFromTable returned error: %v", err)
	}
	if outcome.Updated != 1 {
		t.Fatalf("updated = %d, expected quoted name to resolve", outcome.Updated)
	}
	if store.shops[0].days["monday"] != "9:00 AM - 6:00 PM" {
		t.Errorf("monday = %q", store.shops[0].days["monday"])
	}
}
