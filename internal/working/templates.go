package working

import (
	"ParkLedger/internal/model"

	"github.com/shopspring/decimal"
)

// Templates holds the blank sheet of each module, used when a module has no
// snapshot yet.
type Templates map[model.ModuleKind]model.WorkingState

// Template returns a copy of the blank sheet of kind.
func (t Templates) Template(kind model.ModuleKind) model.WorkingState {
	if tpl, ok := t[kind]; ok {
		return tpl.Clone()
	}
	if kind == model.KindWristbands {
		return model.WorkingState{Kind: kind, Wristbands: &model.WristbandSheet{}}
	}
	return model.WorkingState{Kind: kind, Sales: &model.SalesSheet{}}
}

// PricedItem is a configured line of a sales module.
type PricedItem struct {
	Label     string
	UnitPrice int64
}

// BandColor is a configured wristband row.
type BandColor struct {
	Color      string
	StockIn    int64
	TrackingIn string
}

// SalesTemplate builds a zeroed sales sheet from a price list.
func SalesTemplate(kind model.ModuleKind, items []PricedItem) model.WorkingState {
	sheet := &model.SalesSheet{
		Items:       make([]model.LineItem, 0, len(items)),
		MobileMoney: emptyMobileMoney(),
		Expenses:    decimal.Zero,
	}
	for _, it := range items {
		sheet.Items = append(sheet.Items, model.LineItem{Label: it.Label, UnitPrice: decimal.NewFromInt(it.UnitPrice)})
	}
	return model.WorkingState{Kind: kind, Sales: sheet}
}

// WristbandTemplate builds the wristband sheet from configured colors.
func WristbandTemplate(colors []BandColor) model.WorkingState {
	sheet := &model.WristbandSheet{Rows: make([]model.WristbandRow, 0, len(colors))}
	for i, c := range colors {
		sheet.Rows = append(sheet.Rows, model.WristbandRow{
			ID:         int64(i + 1),
			Color:      c.Color,
			StockIn:    c.StockIn,
			TrackingIn: c.TrackingIn,
		})
	}
	return model.WorkingState{Kind: model.KindWristbands, Wristbands: sheet}
}

// DefaultTemplates are the sheets the desk starts with.
func DefaultTemplates() Templates {
	return Templates{
		model.KindPool: SalesTemplate(model.KindPool, []PricedItem{
			{"Piscine", 500},
			{"Forfait Piscine", 4500},
			{"Forfait Piscine 2", 4000},
			{"Visite", 200},
			{"Terrain Foot", 3000},
			{"Forfait Terrain", 25000},
			{"Événement", 50000},
			{"Anniversaire", 15000},
			{"Cours Natation", 1000},
			{"Baby-foot", 100},
		}),
		model.KindSnackbar: SalesTemplate(model.KindSnackbar, []PricedItem{
			{"Sachet", 200},
			{"Petit pot", 500},
			{"Grand pot", 1000},
			{"Barbapapa", 200},
			{"Lotus", 500},
		}),
		model.KindApparel: SalesTemplate(model.KindApparel, []PricedItem{
			{"Homme", 1000},
			{"Femme", 1000},
			{"Enfant", 1000},
		}),
		model.KindWristbands: WristbandTemplate([]BandColor{
			{Color: "Bleu", StockIn: 100, TrackingIn: "A001"},
			{Color: "Rouge", StockIn: 50, TrackingIn: "R10"},
		}),
	}
}

func emptyMobileMoney() map[model.Provider]decimal.Decimal {
	return map[model.Provider]decimal.Decimal{
		model.ProviderOrange: decimal.Zero,
		model.ProviderWave:   decimal.Zero,
	}
}
