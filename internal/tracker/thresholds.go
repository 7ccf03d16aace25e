package tracker

import (
	"time"

	"github.com/responsewatch/backend/internal/models"
)

type Thresholds struct {
	Warning  time.Duration
	Critical time.Duration
}

// Classify maps unanswered time to a tier. Business hours play no part here.
func (t Thresholds) Classify(elapsed time.Duration) models.Tier {
	switch {
	case elapsed >= t.Critical:
		return models.TierCritical
	case elapsed >= t.Warning:
		return models.TierWarning
	default:
		return models.TierNew
	}
}
