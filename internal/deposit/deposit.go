// Package deposit computes the cross-module versement summary from the live working states.
package deposit

import (
	"ParkLedger/internal/model"

	"github.com/shopspring/decimal"
)

// Sum adds up the figures of each module.
func Sum(figures ...model.MoneyFigures) model.DepositSummary {
	out := model.DepositSummary{Cash: decimal.Zero, OrangeMoney: decimal.Zero, WavePay: decimal.Zero}
	for _, f := range figures {
		out.Cash = out.Cash.Add(f.Cash)
		out.OrangeMoney = out.OrangeMoney.Add(f.OrangeMoney)
		out.WavePay = out.WavePay.Add(f.WavePay)
	}
	out.Total = out.Cash.Add(out.OrangeMoney).Add(out.WavePay)
	return out
}

// Aggregate sums the revenue-bearing states. Wristband states are skipped.
func Aggregate(states ...model.WorkingState) model.DepositSummary {
	figures := make([]model.MoneyFigures, 0, len(states))
	for _, st := range states {
		if !st.Kind.CarriesRevenue() {
			continue
		}
		figures = append(figures, st.Money())
	}
	return Sum(figures...)
}
