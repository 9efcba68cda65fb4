package normalize

import (
	"strings"

	"github.com/koalaroute/koalaroute/models"
)

// StringOrUnknown returns s, or [models.UnknownField] when s is blank.
// Upstream payloads routinely omit airline codes or timestamps; callers
// still get a fully populated offer.
func StringOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.UnknownField
	}
	return s
}

// Batch maps every raw upstream proposal through fn, dropping the ones fn
// rejects. A malformed element never fails the batch; the skipped count is
// returned so adapters can log it.
func Batch[T any](items []T, fn func(T) (models.FlightOffer, error)) (offers []models.FlightOffer, skipped int) {
	offers = make([]models.FlightOffer, 0, len(items))
	for _, item := range items {
		offer, err := fn(item)
		if err != nil {
			skipped++
			continue
		}
		offers = append(offers, offer)
	}
	return offers, skipped
}
