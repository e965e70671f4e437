// Package export writes the ledger history to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"ParkLedger/internal/ledger"
	"ParkLedger/internal/model"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook.
const (
	SheetJournal    = "Journal"
	SheetDetail     = "Détail"
	SheetWristbands = "Bracelets"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook builds a workbook with one Journal row per day, one Détail row per
// finalized line item and one Bracelets row per wristband color. Days are
// listed newest first.
func Workbook(records []model.DailyRecord) (*excelize.File, error) {
	sorted := make([]model.DailyRecord, len(records))
	copy(sorted, records)
	ledger.SortNewestFirst(sorted)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetJournal); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetDetail, SheetWristbands} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeJournal(f, sorted); err != nil {
		return nil, err
	}
	if err := writeDetail(f, sorted); err != nil {
		return nil, err
	}
	if err := writeWristbands(f, sorted); err != nil {
		return nil, err
	}
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, records []model.DailyRecord) error {
	f, err := Workbook(records)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveAs builds the workbook and saves it to path.
func SaveAs(path string, records []model.DailyRecord) error {
	f, err := Workbook(records)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeJournal(f *excelize.File, records []model.DailyRecord) error {
	header := []interface{}{"Date", "Jour"}
	for _, kind := range model.RevenueKinds {
		header = append(header, kind.Label())
	}
	header = append(header, "Total du jour", "Versement")
	if err := setRow(f, SheetJournal, 1, header); err != nil {
		return err
	}

	for i, rec := range records {
		row := []interface{}{rec.DateKey, rec.DisplayDate}
		for _, kind := range model.RevenueKinds {
			if rep, ok := rec.ModuleReports[kind]; ok {
				row = append(row, rep.GrossTotal.InexactFloat64())
			} else {
				row = append(row, nil)
			}
		}
		row = append(row, rec.DayTotal.InexactFloat64(), rec.DepositTotal().InexactFloat64())
		if err := setRow(f, SheetJournal, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeDetail(f *excelize.File, records []model.DailyRecord) error {
	if err := setRow(f, SheetDetail, 1, []interface{}{"Date", "Module", "Article", "Quantité", "Prix unitaire", "Total"}); err != nil {
		return err
	}
	n := 2
	for _, rec := range records {
		for _, kind := range model.RevenueKinds {
			rep, ok := rec.ModuleReports[kind]
			if !ok {
				continue
			}
			for _, item := range rep.LineItems {
				row := []interface{}{rec.DateKey, kind.Label(), item.Label, item.Quantity,
					item.UnitPrice.InexactFloat64(), item.Total().InexactFloat64()}
				if err := setRow(f, SheetDetail, n, row); err != nil {
					return err
				}
				n++
			}
		}
	}
	return nil
}

func writeWristbands(f *excelize.File, records []model.DailyRecord) error {
	if err := setRow(f, SheetWristbands, 1, []interface{}{"Date", "Couleur", "Entrée", "Sortie", "Reste", "Suivi entrée", "Suivi sortie"}); err != nil {
		return err
	}
	n := 2
	for _, rec := range records {
		rep, ok := rec.ModuleReports[model.KindWristbands]
		if !ok {
			continue
		}
		for _, r := range rep.WristbandRows {
			row := []interface{}{rec.DateKey, r.Color, r.StockIn, r.StockOut, r.Remaining, r.TrackingIn, r.TrackingOut}
			if err := setRow(f, SheetWristbands, n, row); err != nil {
				return err
			}
			n++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
