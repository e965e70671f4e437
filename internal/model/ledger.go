package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WristbandReportRow is a finalized wristband row with its derived remaining stock.
type WristbandReportRow struct {
	WristbandRow
	Remaining int64 `json:"remaining"`
}

// ModuleReport is what a module commits to the ledger when finalized.
type ModuleReport struct {
	Kind              ModuleKind                   `json:"kind"`
	LineItems         []LineItem                   `json:"line_items,omitempty"`
	WristbandRows     []WristbandReportRow         `json:"wristband_rows,omitempty"`
	CashTotal         decimal.Decimal              `json:"cash_total"`
	MobileMoneyTotals map[Provider]decimal.Decimal `json:"mobile_money_totals,omitempty"`
	MiscDeductions    decimal.Decimal              `json:"misc_deductions"`
	ExpenseNote       string                       `json:"expense_note,omitempty"`
	GrossTotal        decimal.Decimal              `json:"gross_total"`
	DepositAmount     decimal.Decimal              `json:"deposit_amount"`
	FinalizedAt       time.Time                    `json:"finalized_at"`
}

// MobileTotal sums the report's mobile-money amounts.
func (r ModuleReport) MobileTotal() decimal.Decimal {
	total := decimal.Zero
	for _, v := range r.MobileMoneyTotals {
		total = total.Add(v)
	}
	return total
}

// DailyRecord is the ledger entry of one calendar day.
type DailyRecord struct {
	DateKey       string                      `json:"date_key"`
	DisplayDate   string                      `json:"display_date"`
	ModuleReports map[ModuleKind]ModuleReport `json:"module_reports"`
	DayTotal      decimal.Decimal             `json:"day_total"`
}

// Recompute sets DayTotal to the gross of every revenue-bearing report.
func (d *DailyRecord) Recompute() {
	total := decimal.Zero
	for kind, rep := range d.ModuleReports {
		if !kind.CarriesRevenue() {
			continue
		}
		total = total.Add(rep.GrossTotal)
	}
	d.DayTotal = total
}

// DepositTotal sums the deposit amounts of the finalized reports.
func (d DailyRecord) DepositTotal() decimal.Decimal {
	total := decimal.Zero
	for _, rep := range d.ModuleReports {
		total = total.Add(rep.DepositAmount)
	}
	return total
}

// Clone returns a copy whose report map can be modified independently.
func (d DailyRecord) Clone() DailyRecord {
	out := d
	out.ModuleReports = make(map[ModuleKind]ModuleReport, len(d.ModuleReports))
	for k, v := range d.ModuleReports {
		out.ModuleReports[k] = v
	}
	return out
}

// Acknowledgement is the short-lived confirmation shown after a finalize.
type Acknowledgement struct {
	EventID       string          `json:"event_id"`
	Kind          ModuleKind      `json:"kind"`
	DateKey       string          `json:"date_key"`
	GrossTotal    decimal.Decimal `json:"gross_total"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	DayTotal      decimal.Decimal `json:"day_total"`
	At            time.Time       `json:"at"`
}
