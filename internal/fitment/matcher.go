package fitment

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"partsfit/internal/domain/catalog"
)

// YearWindow is how far either side of the vehicle year a record's range
// may sit and still be a candidate.
const YearWindow = 10

// Source supplies the base candidate set.
type Source interface {
	ListFitmentCandidates(ctx context.Context, q catalog.CandidateQuery) ([]catalog.FitmentDetail, error)
}

// Result is the first non-empty tier. Tier 4 is the unfiltered base set and
// may be empty.
type Result struct {
	Tier    int
	Records []catalog.FitmentDetail
}

type Matcher struct {
	source Source
	tracer trace.Tracer
}

func NewMatcher(source Source) *Matcher {
	return &Matcher{
		source: source,
		tracer: otel.Tracer("partsfit/fitment"),
	}
}

// Match relaxes the body and drive filters tier by tier and stops at the
// first tier that yields records.
func (m *Matcher) Match(ctx context.Context, v Vehicle) (Result, error) {
	ctx, span := m.tracer.Start(ctx, "fitment.Match", trace.WithAttributes(
		attribute.String("vehicle.make", v.Make),
		attribute.String("vehicle.model", v.Model),
		attribute.Int("vehicle.year", v.Year),
	))
	defer span.End()

	base, err := m.source.ListFitmentCandidates(ctx, catalog.CandidateQuery{
		Make:     v.Make,
		Model:    v.Model,
		YearFrom: v.Year - YearWindow,
		YearTo:   v.Year + YearWindow,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "candidate query failed")
		return Result{}, err
	}

	body, hasBody := Normalize(v.BodyClass, BodyClasses)
	drive, hasDrive := Normalize(v.DriveType, DriveTypes)

	res := relax(base, body, hasBody, drive, hasDrive)
	span.SetAttributes(
		attribute.Int("fitment.base_count", len(base)),
		attribute.Int("fitment.tier", res.Tier),
		attribute.Int("fitment.match_count", len(res.Records)),
	)
	return res, nil
}

func relax(base []catalog.FitmentDetail, body string, hasBody bool, drive string, hasDrive bool) Result {
	tiers := []struct {
		body, drive bool
	}{
		{hasBody, hasDrive},
		{hasBody, false},
		{false, hasDrive},
	}
	for i, t := range tiers {
		matched := filter(base, func(d catalog.FitmentDetail) bool {
			if t.body && !containsFold(d.Record.BodyClass, body) {
				return false
			}
			if t.drive && !containsFold(d.Record.DriveType, drive) {
				return false
			}
			return true
		})
		if len(matched) > 0 {
			return Result{Tier: i + 1, Records: matched}
		}
	}
	return Result{Tier: 4, Records: base}
}

func filter(in []catalog.FitmentDetail, keep func(catalog.FitmentDetail) bool) []catalog.FitmentDetail {
	out := make([]catalog.FitmentDetail, 0, len(in))
	for _, d := range in {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// containsFold reports a case-insensitive substring match. A nil field never
// matches.
func containsFold(field *string, token string) bool {
	if field == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*field), strings.ToLower(token))
}
