package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"ParkLedger/internal/locale"
	"ParkLedger/internal/model"
)

// FormatAcknowledgement formats a finalize confirmation.
func FormatAcknowledgement(ack model.Acknowledgement) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("✅ <b>%s validé</b> | %s\n\n", ack.Kind.Label(), ack.At.Format("15:04")))
	if ack.Kind.CarriesRevenue() {
		b.WriteString(fmt.Sprintf("Recette brute: %s\n", locale.FormatAmount(ack.GrossTotal)))
		b.WriteString(fmt.Sprintf("Versement: %s\n", locale.FormatAmount(ack.DepositAmount)))
	}
	b.WriteString(fmt.Sprintf("Total du jour: %s\n", locale.FormatAmount(ack.DayTotal)))
	return b.String()
}

// FormatDeposit formats the live cross-module versement summary.
func FormatDeposit(sum model.DepositSummary, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💵 <b>Versement</b> | %s\n\n", locale.DisplayDate(at)))
	b.WriteString(fmt.Sprintf("Espèces: %s\n", locale.FormatAmount(sum.Cash)))
	b.WriteString(fmt.Sprintf("Orange Money: %s\n", locale.FormatAmount(sum.OrangeMoney)))
	b.WriteString(fmt.Sprintf("Wave: %s\n", locale.FormatAmount(sum.WavePay)))
	b.WriteString("─────────────────\n")
	b.WriteString(fmt.Sprintf("<b>Total Recettes du Jour: %s</b>\n", locale.FormatAmount(sum.Total)))
	return b.String()
}

// FormatRecord formats one ledger day with a line per finalized module.
func FormatRecord(rec model.DailyRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📒 <b>Journal du %s</b>\n\n", html.EscapeString(rec.DisplayDate)))
	for _, kind := range model.AllKinds {
		rep, ok := rec.ModuleReports[kind]
		if !ok {
			continue
		}
		if !kind.CarriesRevenue() {
			b.WriteString(fmt.Sprintf("%s:\n", kind.Label()))
			for _, row := range rep.WristbandRows {
				b.WriteString(fmt.Sprintf("  %s: entrée %d, sortie %d, reste %d\n",
					html.EscapeString(row.Color), row.StockIn, row.StockOut, row.Remaining))
			}
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s (versement %s)\n",
			kind.Label(), locale.FormatAmount(rep.GrossTotal), locale.FormatAmount(rep.DepositAmount)))
		if !rep.MiscDeductions.IsZero() {
			note := rep.ExpenseNote
			if note == "" {
				note = "dépenses"
			}
			b.WriteString(fmt.Sprintf("  − %s: %s\n", html.EscapeString(note), locale.FormatAmount(rep.MiscDeductions)))
		}
	}
	b.WriteString("─────────────────\n")
	b.WriteString(fmt.Sprintf("<b>Total du jour: %s</b>\n", locale.FormatAmount(rec.DayTotal)))
	return b.String()
}

// FormatHistory lists ledger days, newest first as given, up to limit entries.
func FormatHistory(records []model.DailyRecord, limit int) string {
	if len(records) == 0 {
		return "📚 Aucune journée enregistrée."
	}
	var b strings.Builder
	b.WriteString("📚 <b>Historique</b>\n\n")
	for i, rec := range records {
		if limit > 0 && i == limit {
			b.WriteString(fmt.Sprintf("… et %d jours de plus\n", len(records)-limit))
			break
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", html.EscapeString(rec.DisplayDate), locale.FormatAmount(rec.DayTotal)))
	}
	return b.String()
}

// FormatRollover announces that the day's working figures were cleared.
func FormatRollover(dateKey string, cutoffHour int) string {
	return fmt.Sprintf("🔄 <b>Clôture journalière</b> %s\nSaisies remises à zéro après %dh.", dateKey, cutoffHour)
}

// FormatPersistAlert warns that the ledger could not be written to disk.
func FormatPersistAlert(err error) string {
	return fmt.Sprintf("⚠️ <b>Échec d'enregistrement du journal</b>\n%s\nLes données restent en mémoire.", html.EscapeString(err.Error()))
}

// StatusView is what the status command prints.
type StatusView struct {
	Today         string
	ResetMarker   string
	RolloverState string
	CutoffHour    int
	Banner        *model.Acknowledgement
	PersistError  string
}

// FormatStatus formats the desk status.
func FormatStatus(s StatusView) string {
	var b strings.Builder
	b.WriteString("ℹ️ <b>État</b>\n\n")
	b.WriteString(fmt.Sprintf("Aujourd'hui: %s\n", s.Today))
	marker := s.ResetMarker
	if marker == "" {
		marker = "jamais"
	}
	b.WriteString(fmt.Sprintf("Dernière remise à zéro: %s\n", marker))
	b.WriteString(fmt.Sprintf("Clôture: %s (après %dh)\n", s.RolloverState, s.CutoffHour))
	if s.Banner != nil {
		b.WriteString(fmt.Sprintf("Dernière validation: %s\n", s.Banner.Kind.Label()))
	}
	if s.PersistError != "" {
		b.WriteString(fmt.Sprintf("⚠️ Enregistrement: %s\n", html.EscapeString(s.PersistError)))
	}
	return b.String()
}

// HelpText lists the supported commands.
func HelpText() string {
	return strings.Join([]string{
		"Commandes disponibles:",
		"/versement - versement du jour",
		"/historique - journées enregistrées",
		"/jour AAAA-MM-JJ - détail d'une journée",
		"/etat - état de la clôture",
		"/resume - résumé du jour",
	}, "\n")
}
