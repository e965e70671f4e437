package api

import (
	"fmt"

	"ParkLedger/internal/model"

	"github.com/shopspring/decimal"
)

// LineItemRequest is one priced line of a sales sheet.
type LineItemRequest struct {
	Label     string `json:"label"`
	Quantity  Number `json:"quantity"`
	UnitPrice Number `json:"unit_price"`
}

// SalesSheetRequest is the editable sheet of a revenue module.
type SalesSheetRequest struct {
	Items       []LineItemRequest `json:"items"`
	MobileMoney map[string]Number `json:"mobile_money"`
	Expenses    Number            `json:"expenses"`
	ExpenseNote string            `json:"expense_note"`
}

// WristbandRowRequest is one wristband color row.
type WristbandRowRequest struct {
	ID                int64  `json:"id"`
	Color             string `json:"color"`
	StockIn           Number `json:"stock_in"`
	StockOut          Number `json:"stock_out"`
	TrackingIn        string `json:"tracking_in"`
	TrackingOut       string `json:"tracking_out"`
	TrackingRemaining string `json:"tracking_remaining"`
}

// WristbandSheetRequest is the wristband stock sheet.
type WristbandSheetRequest struct {
	Rows []WristbandRowRequest `json:"rows"`
}

// WorkingStateRequest is the body of the working-state and finalize routes.
type WorkingStateRequest struct {
	Kind       string                 `json:"kind"`
	Sales      *SalesSheetRequest     `json:"sales"`
	Wristbands *WristbandSheetRequest `json:"wristbands"`
}

// ToState converts the request into a working state for kind. Fields holding
// text that is not a number are returned as field errors.
func (r WorkingStateRequest) ToState(kind model.ModuleKind) (model.WorkingState, map[string]string) {
	fields := make(map[string]string)
	st := model.WorkingState{Kind: kind}
	if r.Kind != "" {
		k, err := model.ParseKind(r.Kind)
		if err != nil {
			fields["kind"] = "unknown"
		} else {
			st.Kind = k
		}
	}

	if r.Sales != nil {
		sheet := &model.SalesSheet{
			Items:       make([]model.LineItem, 0, len(r.Sales.Items)),
			MobileMoney: make(map[model.Provider]decimal.Decimal, len(r.Sales.MobileMoney)),
			Expenses:    number(fields, "expenses", r.Sales.Expenses),
			ExpenseNote: r.Sales.ExpenseNote,
		}
		for i, it := range r.Sales.Items {
			prefix := fmt.Sprintf("items[%d]", i)
			sheet.Items = append(sheet.Items, model.LineItem{
				Label:     it.Label,
				Quantity:  count(fields, prefix+".quantity", it.Quantity),
				UnitPrice: number(fields, prefix+".unit_price", it.UnitPrice),
			})
		}
		for p, v := range r.Sales.MobileMoney {
			sheet.MobileMoney[model.Provider(p)] = number(fields, "mobile_money."+p, v)
		}
		st.Sales = sheet
	}

	if r.Wristbands != nil {
		sheet := &model.WristbandSheet{Rows: make([]model.WristbandRow, 0, len(r.Wristbands.Rows))}
		for i, row := range r.Wristbands.Rows {
			prefix := fmt.Sprintf("rows[%d]", i)
			sheet.Rows = append(sheet.Rows, model.WristbandRow{
				ID:                row.ID,
				Color:             row.Color,
				StockIn:           count(fields, prefix+".stock_in", row.StockIn),
				StockOut:          count(fields, prefix+".stock_out", row.StockOut),
				TrackingIn:        row.TrackingIn,
				TrackingOut:       row.TrackingOut,
				TrackingRemaining: row.TrackingRemaining,
			})
		}
		st.Wristbands = sheet
	}
	return st, fields
}

func number(fields map[string]string, name string, n Number) decimal.Decimal {
	if n.Invalid {
		fields[name] = "not a number"
		return decimal.Zero
	}
	return n.Value
}

func count(fields map[string]string, name string, n Number) int64 {
	if n.Invalid {
		fields[name] = "not a number"
		return 0
	}
	v, ok := n.Int()
	if !ok {
		fields[name] = "not a whole number"
		if n.Whole() {
			fields[name] = "out of range"
		}
		return 0
	}
	return v
}
