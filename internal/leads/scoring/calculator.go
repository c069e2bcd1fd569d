// Package scoring turns the signals known about a lead into a 0-100 priority score.
//
// The score is the sum of five bounded components:
//
//	source        0-20  channel the lead arrived through
//	activity      0-25  number of logged interactions
//	responseTime  0-20  latency until the first interaction after creation
//	vehicleValue  0-20  asking price of the linked vehicle
//	freshness     0-15  age of the lead at evaluation time
//
// Computation is pure apart from the injected clock, so a Calculator can be
// shared freely between goroutines.
package scoring

import (
	"time"

	"dealer_backend/internal/leads/domain"
)

const (
	// ScoreVersion tracks the scoring model stored alongside persisted snapshots.
	// Bump this when thresholds or weights change.
	ScoreVersion = "2026-v1"

	MaxSource       = 20
	MaxActivity     = 25
	MaxResponseTime = 20
	MaxVehicleValue = 20
	MaxFreshness    = 15
	MaxTotal        = MaxSource + MaxActivity + MaxResponseTime + MaxVehicleValue + MaxFreshness

	// HotThreshold is the lowest total in the "very high" band.
	HotThreshold = 80
)

// Clock supplies the current instant.
type Clock func() time.Time

// Lead is the subset of a lead record the score depends on.
type Lead struct {
	CreatedAt   time.Time
	Source      domain.Source
	AskingPrice *float64 // nil when no vehicle is linked
}

// Activity is a logged interaction; only its timestamp matters here.
type Activity struct {
	CreatedAt time.Time
}

// Breakdown is the score together with its components.
type Breakdown struct {
	Source       int `json:"source"`
	Activity     int `json:"activity"`
	ResponseTime int `json:"responseTime"`
	VehicleValue int `json:"vehicleValue"`
	Freshness    int `json:"freshness"`
	Total        int `json:"total"`
}

// Calculator computes breakdowns against a clock.
type Calculator struct {
	now Clock
}

// NewCalculator returns a Calculator reading time from now.
// A nil clock falls back to the system clock.
func NewCalculator(now Clock) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now}
}

// Compute scores lead at the calculator's current instant.
func (c *Calculator) Compute(lead Lead, activities []Activity) Breakdown {
	return ComputeAt(lead, activities, c.now())
}

// Now exposes the calculator's clock reading.
func (c *Calculator) Now() time.Time {
	return c.now()
}

// ComputeAt scores lead as if evaluated at now. It never fails: unknown
// channels and missing prices fall back to their base points.
func ComputeAt(lead Lead, activities []Activity, now time.Time) Breakdown {
	b := Breakdown{
		Source:       sourceScore(lead.Source),
		Activity:     activityScore(len(activities)),
		ResponseTime: responseTimeScore(lead.CreatedAt, activities),
		VehicleValue: vehicleValueScore(lead.AskingPrice),
		Freshness:    freshnessScore(lead.CreatedAt, now),
	}
	b.Total = b.Source + b.Activity + b.ResponseTime + b.VehicleValue + b.Freshness
	return b
}

var sourceScores = map[domain.Source]int{
	domain.SourceWebsite:     20,
	domain.SourceAutoScout24: 18,
	domain.SourceMobileDe:    18,
	domain.SourceWalkIn:      12,
	domain.SourcePhone:       10,
	domain.SourceOther:       8,
}

func sourceScore(source domain.Source) int {
	if score, ok := sourceScores[source]; ok {
		return score
	}
	return sourceScores[domain.SourceOther]
}

// activityScore plateaus so each extra interaction is worth less.
func activityScore(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 5
	case count == 2:
		return 10
	case count <= 4:
		return 15
	case count <= 6:
		return 20
	default:
		return 25
	}
}

// responseTimeScore looks at the earliest activity strictly after creation.
// Activities stamped at or before creation (backfills, clock skew) are ignored;
// if only such activities exist the lead gets flat base points.
func responseTimeScore(createdAt time.Time, activities []Activity) int {
	if len(activities) == 0 {
		return 0
	}

	var first time.Time
	found := false
	for _, a := range activities {
		if !a.CreatedAt.After(createdAt) {
			continue
		}
		if !found || a.CreatedAt.Before(first) {
			first = a.CreatedAt
			found = true
		}
	}
	if !found {
		return 10
	}

	hours := first.Sub(createdAt).Hours()
	switch {
	case hours <= 1:
		return 20
	case hours <= 4:
		return 16
	case hours <= 24:
		return 12
	case hours <= 48:
		return 8
	case hours <= 72:
		return 4
	default:
		return 2
	}
}

// vehicleValueScore bands the asking price (CHF), highest band first.
func vehicleValueScore(price *float64) int {
	if price == nil || !(*price > 0) {
		return 5
	}

	p := *price
	switch {
	case p >= 100000:
		return 20
	case p >= 60000:
		return 18
	case p >= 40000:
		return 15
	case p >= 25000:
		return 12
	case p >= 15000:
		return 10
	case p >= 8000:
		return 7
	default:
		return 5
	}
}

func freshnessScore(createdAt, now time.Time) int {
	days := now.Sub(createdAt).Hours() / 24
	switch {
	case days <= 1:
		return 15
	case days <= 3:
		return 13
	case days <= 7:
		return 10
	case days <= 14:
		return 7
	case days <= 30:
		return 4
	default:
		return 2
	}
}
