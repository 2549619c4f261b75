package progress

import (
	"math"
	"time"

	"github.com/abhisek/studywise/internal/domain"
)

// Engagement scoring constants. These are product-tuning values; they are
// carried as-is, not derived.
const (
	engagementWindow  = 5
	recencyHalfWindow = 24 * time.Hour

	recencyWeight     = 0.4
	varietyWeight     = 0.3
	consistencyWeight = 0.3

	varietyCap = 3
)

// engagementScore blends recency, variety, and consistency of the last
// engagementWindow content records into a 0..1 heuristic.
func engagementScore(records []domain.ContentRecord, now time.Time) float64 {
	if len(records) == 0 {
		return 0
	}

	recent := records
	if len(recent) > engagementWindow {
		recent = recent[len(recent)-engagementWindow:]
	}

	// Recency: exponential decay of the newest record's age over 24h.
	newest := recent[len(recent)-1].Timestamp
	age := now.Sub(newest)
	if age < 0 {
		age = 0
	}
	recency := math.Exp(-float64(age) / float64(recencyHalfWindow))

	// Variety: distinct content types in the window, capped and normalized.
	distinct := distinctTypes(recent)
	if distinct > varietyCap {
		distinct = varietyCap
	}
	variety := float64(distinct) / float64(varietyCap)

	// Consistency: how close the window is to a steady three-item cadence.
	consistency := math.Min(1, float64(len(recent))/3.0)

	return recencyWeight*recency + varietyWeight*variety + consistencyWeight*consistency
}

// hasContentVariety is the advancement gate on generated-content
// diversity. The bar rises as accuracy falls: struggling learners see
// more content shapes before being told they are ready, while strong
// learners are not artificially delayed.
func hasContentVariety(records []domain.ContentRecord, accuracy float64) bool {
	n := len(records)
	types := distinctTypes(records)

	switch {
	case accuracy >= 0.8:
		return n >= 2 && types >= 2
	case accuracy >= 0.6:
		return n >= 3 && types >= 2
	default:
		return n >= 4 && types >= 3
	}
}

func distinctTypes(records []domain.ContentRecord) int {
	seen := make(map[domain.ContentType]bool, len(records))
	for _, r := range records {
		seen[r.Type] = true
	}
	return len(seen)
}
