// Package finalize turns a module's working state into a ledger report.
package finalize

import (
	"time"

	"ParkLedger/internal/locale"
	"ParkLedger/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Ledger is the part of the ledger store the coordinator writes to.
type Ledger interface {
	Upsert(dateKey string, kind model.ModuleKind, report model.ModuleReport) model.DailyRecord
}

// Acknowledger receives the confirmation of a successful finalize.
type Acknowledger interface {
	Acknowledge(ack model.Acknowledgement)
}

// Coordinator validates finalize events and merges them into the ledger.
type Coordinator struct {
	ledger Ledger
	acks   []Acknowledger
	now    func() time.Time
}

// NewCoordinator creates a Coordinator. now supplies the local clock that decides the ledger day.
func NewCoordinator(ledger Ledger, now func() time.Time, acks ...Acknowledger) *Coordinator {
	if now == nil {
		now = time.Now
	}
	return &Coordinator{ledger: ledger, acks: acks, now: now}
}

// Finalize commits state as today's report for kind. An invalid state returns
// a *ValidationError and leaves the ledger untouched. Finalizing the same kind
// again the same day replaces the earlier report.
func (c *Coordinator) Finalize(kind model.ModuleKind, state model.WorkingState) (model.ModuleReport, error) {
	if err := Validate(kind, state); err != nil {
		return model.ModuleReport{}, err
	}
	state.Kind = kind

	now := c.now()
	report := BuildReport(state, now)
	dateKey := locale.DateKey(now)
	rec := c.ledger.Upsert(dateKey, kind, report)

	ack := model.Acknowledgement{
		EventID:       uuid.NewString(),
		Kind:          kind,
		DateKey:       dateKey,
		GrossTotal:    report.GrossTotal,
		DepositAmount: report.DepositAmount,
		DayTotal:      rec.DayTotal,
		At:            now,
	}
	log.Info().
		Str("event_id", ack.EventID).
		Str("kind", string(kind)).
		Str("date", dateKey).
		Str("gross", report.GrossTotal.String()).
		Str("deposit", report.DepositAmount.String()).
		Msg("module finalized")

	for _, a := range c.acks {
		a.Acknowledge(ack)
	}
	return report, nil
}

// BuildReport derives the ledger report from a well-formed working state. The
// totals are recomputed here regardless of what the module displayed.
func BuildReport(state model.WorkingState, at time.Time) model.ModuleReport {
	report := model.ModuleReport{
		Kind:           state.Kind,
		CashTotal:      decimal.Zero,
		MiscDeductions: decimal.Zero,
		GrossTotal:     decimal.Zero,
		DepositAmount:  decimal.Zero,
		FinalizedAt:    at,
	}

	if state.Wristbands != nil {
		report.WristbandRows = make([]model.WristbandReportRow, 0, len(state.Wristbands.Rows))
		for _, row := range state.Wristbands.Rows {
			report.WristbandRows = append(report.WristbandRows, model.WristbandReportRow{
				WristbandRow: row,
				Remaining:    row.Remaining(),
			})
		}
		return report
	}

	sheet := state.Sales
	report.LineItems = append([]model.LineItem(nil), sheet.Items...)
	report.MobileMoneyTotals = make(map[model.Provider]decimal.Decimal, len(sheet.MobileMoney))
	for p, v := range sheet.MobileMoney {
		report.MobileMoneyTotals[p] = v
	}
	report.GrossTotal = sheet.Gross()
	report.CashTotal = sheet.Cash()
	report.MiscDeductions = sheet.Expenses
	report.ExpenseNote = sheet.ExpenseNote
	report.DepositAmount = sheet.Deposit()
	return report
}
