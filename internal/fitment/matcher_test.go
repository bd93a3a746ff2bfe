package fitment

import (
	"context"
	"errors"
	"testing"

	"partsfit/internal/domain/catalog"
)

type fakeSource struct {
	records []catalog.FitmentDetail
	err     error
	got     []catalog.CandidateQuery
}

// ListFitmentCandidates mimics the SQL predicate: make and model ignoring
// case, year ranges overlapping the window.
func (f *fakeSource) ListFitmentCandidates(_ context.Context, q catalog.CandidateQuery) ([]catalog.FitmentDetail, error) {
	f.got = append(f.got, q)
	if f.err != nil {
		return nil, f.err
	}
	var out []catalog.FitmentDetail
	for _, d := range f.records {
		r := d.Record
		if !equalFold(r.Make, q.Make) || !equalFold(r.Model, q.Model) {
			continue
		}
		if r.YearStart <= q.YearTo && r.YearEnd >= q.YearFrom {
			out = append(out, d)
		}
	}
	return out, nil
}

func equalFold(a, b string) bool {
	return containsFold(&a, b) && len(a) == len(b)
}

func str(s string) *string { return &s }

func record(id int64, body, drive string, start, end int) catalog.FitmentDetail {
	r := catalog.FitmentRecord{ID: id, Make: "Honda", Model: "Accord", YearStart: start, YearEnd: end}
	if body != "" {
		r.BodyClass = str(body)
	}
	if drive != "" {
		r.DriveType = str(drive)
	}
	return catalog.FitmentDetail{Record: r}
}

func accord() Vehicle {
	return Vehicle{VIN: "1HGCM82633A004352", Year: 2015, Make: "Honda", Model: "Accord", BodyClass: "4dr Sedan", DriveType: "FWD"}
}

func ids(ds []catalog.FitmentDetail) []int64 {
	out := make([]int64, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Record.ID)
	}
	return out
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMatchTierOneBodyAndDrive(t *testing.T) {
	src := &fakeSource{records: []catalog.FitmentDetail{
		record(1, "sedan", "fwd", 2013, 2017),
		record(2, "sedan", "rwd", 2013, 2017),
		record(3, "suv", "fwd", 2013, 2017),
	}}
	res, err := NewMatcher(src).Match(context.Background(), accord())
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != 1 || !sameIDs(ids(res.Records), []int64{1}) {
		t.Fatalf("got tier %d ids %v", res.Tier, ids(res.Records))
	}
}

func TestMatchTierTwoBodyOnly(t *testing.T) {
	src := &fakeSource{records: []catalog.FitmentDetail{
		record(1, "sedan", "rwd", 2013, 2017),
		record(2, "suv", "awd", 2013, 2017),
	}}
	res, err := NewMatcher(src).Match(context.Background(), accord())
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != 2 || !sameIDs(ids(res.Records), []int64{1}) {
		t.Fatalf("got tier %d ids %v", res.Tier, ids(res.Records))
	}
}

func TestMatchTierThreeDriveOnly(t *testing.T) {
	src := &fakeSource{records: []catalog.FitmentDetail{
		record(1, "coupe", "FWD", 2013, 2017),
		record(2, "coupe", "rwd", 2013, 2017),
	}}
	res, err := NewMatcher(src).Match(context.Background(), accord())
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != 3 || !sameIDs(ids(res.Records), []int64{1}) {
		t.Fatalf("got tier %d ids %v", res.Tier, ids(res.Records))
	}
}

func TestMatchTierFourReturnsExactlyBase(t *testing.T) {
	src := &fakeSource{records: []catalog.FitmentDetail{
		record(1, "coupe", "rwd", 2010, 2012),
		record(2, "", "", 2020, 2024),
		record(3, "wagon", "awd", 1990, 1995),
	}}
	res, err := NewMatcher(src).Match(context.Background(), accord())
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != 4 || !sameIDs(ids(res.Records), []int64{1, 2}) {
		t.Fatalf("got tier %d ids %v", res.Tier, ids(res.Records))
	}
}

func TestMatchStopsAtFirstNonEmptyTier(t *testing.T) {
	src := &fakeSource{records: []catalog.FitmentDetail{
		record(1, "Sedan", "fwd", 2013, 2017),
		record(2, "sedan", "rwd", 2013, 2017),
		record(3, "coupe", "fwd", 2013, 2017),
	}}
	res, _ := NewMatcher(src).Match(context.Background(), accord())
	if res.Tier != 1 || len(res.Records) != 1 {
		t.Fatalf("expected tier 1 with one record, got tier %d ids %v", res.Tier, ids(res.Records))
	}
}

func TestMatchWithoutAttributesIsTierOne(t *testing.T) {
	src := &fakeSource{records: []catalog.FitmentDetail{record(1, "sedan", "fwd", 2013, 2017)}}
	v := accord()
	v.BodyClass, v.DriveType = "", ""
	res, _ := NewMatcher(src).Match(context.Background(), v)
	if res.Tier != 1 || len(res.Records) != 1 {
		t.Fatalf("got tier %d ids %v", res.Tier, ids(res.Records))
	}
}

func TestMatchYearParseFailureUsesZeroWindow(t *testing.T) {
	src := &fakeSource{records: []catalog.FitmentDetail{
		record(1, "sedan", "fwd", 0, 5),
		record(2, "sedan", "fwd", 2013, 2017),
	}}
	v, err := ParseVehicle(map[string]any{"vin": "X", "year": "unknown", "make": "honda", "model": "ACCORD"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := NewMatcher(src).Match(context.Background(), v)
	if err != nil {
		t.Fatalf("matcher failed: %v", err)
	}
	if q := src.got[0]; q.YearFrom != -10 || q.YearTo != 10 {
		t.Fatalf("window = [%d, %d], want [-10, 10]", q.YearFrom, q.YearTo)
	}
	if !sameIDs(ids(res.Records), []int64{1}) {
		t.Fatalf("got ids %v", ids(res.Records))
	}
}

func TestMatchEmptyBaseIsNotAnError(t *testing.T) {
	res, err := NewMatcher(&fakeSource{}).Match(context.Background(), accord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Tier != 4 || len(res.Records) != 0 {
		t.Fatalf("got tier %d with %d records", res.Tier, len(res.Records))
	}
}

func TestMatchPropagatesStoreError(t *testing.T) {
	boom := errors.New("connection refused")
	if _, err := NewMatcher(&fakeSource{err: boom}).Match(context.Background(), accord()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
