package finalize

import (
	"time"

	"ParkLedger/internal/model"
)

// Banner keeps the latest acknowledgement visible for a fixed duration. It only
// drives the "Validé" indicator; nothing depends on it for correctness.
type Banner struct {
	duration time.Duration
	current  *model.Acknowledgement
}

func NewBanner(duration time.Duration) *Banner {
	return &Banner{duration: duration}
}

func (b *Banner) Acknowledge(ack model.Acknowledgement) {
	b.current = &ack
}

// Active returns the acknowledgement still on display at now.
func (b *Banner) Active(now time.Time) (model.Acknowledgement, bool) {
	if b.current == nil || now.Sub(b.current.At) >= b.duration {
		return model.Acknowledgement{}, false
	}
	return *b.current, true
}
