package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrVariantMismatch is returned when a working state does not carry the sheet its kind requires.
var ErrVariantMismatch = errors.New("working state variant does not match module kind")

// LineItem is one priced row of a sales sheet.
type LineItem struct {
	Label     string          `json:"label"`
	Quantity  int64           `json:"quantity" validate:"gte=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

// Total is quantity × unit price.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
}

// WristbandRow tracks one wristband color for the day.
type WristbandRow struct {
	ID                int64  `json:"id"`
	Color             string `json:"color"`
	StockIn           int64  `json:"stock_in" validate:"gte=0"`
	StockOut          int64  `json:"stock_out" validate:"gte=0"`
	TrackingIn        string `json:"tracking_in"`
	TrackingOut       string `json:"tracking_out"`
	TrackingRemaining string `json:"tracking_remaining"`
}

// Remaining is stock in minus stock out. It goes negative when more bands
// left than came in and is reported as is.
func (r WristbandRow) Remaining() int64 {
	return r.StockIn - r.StockOut
}

// SalesSheet is the editable sheet of the pool, snack bar and swimwear modules.
type SalesSheet struct {
	Items       []LineItem                   `json:"items" validate:"dive"`
	MobileMoney map[Provider]decimal.Decimal `json:"mobile_money"`
	Expenses    decimal.Decimal              `json:"expenses" validate:"gte=0"`
	ExpenseNote string                       `json:"expense_note,omitempty"`
}

// Gross sums every line item.
func (s *SalesSheet) Gross() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Total())
	}
	return total
}

// MobileTotal sums every mobile-money provider.
func (s *SalesSheet) MobileTotal() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s.MobileMoney {
		total = total.Add(v)
	}
	return total
}

// Mobile returns the amount collected through provider p.
func (s *SalesSheet) Mobile(p Provider) decimal.Decimal {
	if v, ok := s.MobileMoney[p]; ok {
		return v
	}
	return decimal.Zero
}

// Cash is the amount taken at the till: gross minus mobile money.
func (s *SalesSheet) Cash() decimal.Decimal {
	return s.Gross().Sub(s.MobileTotal())
}

// Deposit is the versement expected at the bank.
func (s *SalesSheet) Deposit() decimal.Decimal {
	return s.Cash().Sub(s.Expenses)
}

// WristbandSheet is the editable sheet of the wristband module.
type WristbandSheet struct {
	Rows []WristbandRow `json:"rows" validate:"dive"`
}

// WorkingState is the unsaved snapshot of one module. Exactly one of Sales or
// Wristbands is set, according to Kind.
type WorkingState struct {
	Kind       ModuleKind      `json:"kind"`
	Sales      *SalesSheet     `json:"sales,omitempty"`
	Wristbands *WristbandSheet `json:"wristbands,omitempty"`
}

// CheckShape verifies the kind is known and the populated variant matches it.
func (w WorkingState) CheckShape() error {
	if !w.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, w.Kind)
	}
	if w.Kind == KindWristbands {
		if w.Wristbands == nil || w.Sales != nil {
			return fmt.Errorf("%w: %s needs wristband rows", ErrVariantMismatch, w.Kind)
		}
		return nil
	}
	if w.Sales == nil || w.Wristbands != nil {
		return fmt.Errorf("%w: %s needs sales items", ErrVariantMismatch, w.Kind)
	}
	return nil
}

// Clone returns a deep copy.
func (w WorkingState) Clone() WorkingState {
	out := WorkingState{Kind: w.Kind}
	if w.Sales != nil {
		s := *w.Sales
		s.Items = append([]LineItem(nil), w.Sales.Items...)
		if w.Sales.MobileMoney != nil {
			s.MobileMoney = make(map[Provider]decimal.Decimal, len(w.Sales.MobileMoney))
			for p, v := range w.Sales.MobileMoney {
				s.MobileMoney[p] = v
			}
		}
		out.Sales = &s
	}
	if w.Wristbands != nil {
		out.Wristbands = &WristbandSheet{Rows: append([]WristbandRow(nil), w.Wristbands.Rows...)}
	}
	return out
}

// Money returns the figures the deposit view sums. Wristband states have none.
func (w WorkingState) Money() MoneyFigures {
	if w.Sales == nil || !w.Kind.CarriesRevenue() {
		return MoneyFigures{Cash: decimal.Zero, OrangeMoney: decimal.Zero, WavePay: decimal.Zero}
	}
	return MoneyFigures{
		Cash:        w.Sales.Deposit(),
		OrangeMoney: w.Sales.Mobile(ProviderOrange),
		WavePay:     w.Sales.Mobile(ProviderWave),
	}
}

// MoneyFigures are the cash and mobile-money amounts of one module.
type MoneyFigures struct {
	Cash        decimal.Decimal `json:"cash"`
	OrangeMoney decimal.Decimal `json:"orange_money"`
	WavePay     decimal.Decimal `json:"wave_pay"`
}

// DepositSummary is the cross-module versement view.
type DepositSummary struct {
	Cash        decimal.Decimal `json:"cash"`
	OrangeMoney decimal.Decimal `json:"orange_money"`
	WavePay     decimal.Decimal `json:"wave_pay"`
	Total       decimal.Decimal `json:"total"`
}
