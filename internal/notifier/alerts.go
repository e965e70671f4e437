package notifier

import (
	"time"

	"ParkLedger/internal/model"
)

// Sender is the part of the notifier that alerts use.
type Sender interface {
	SendAsync(text string)
}

// PersistAlerts forwards ledger write failures to the chat, at most once per
// interval so a broken disk does not flood the operator.
type PersistAlerts struct {
	sender   Sender
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

// NewPersistAlerts creates a PersistAlerts. now may be nil.
func NewPersistAlerts(sender Sender, interval time.Duration, now func() time.Time) *PersistAlerts {
	if now == nil {
		now = time.Now
	}
	return &PersistAlerts{sender: sender, interval: interval, now: now}
}

func (p *PersistAlerts) Upserted(model.DailyRecord, model.ModuleKind) {}

func (p *PersistAlerts) PersistFailed(err error) {
	now := p.now()
	if !p.last.IsZero() && now.Sub(p.last) < p.interval {
		return
	}
	p.last = now
	p.sender.SendAsync(FormatPersistAlert(err))
}
