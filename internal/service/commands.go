package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ParkLedger/internal/locale"
	"ParkLedger/internal/notifier"
)

const historyLimit = 14

// DailySummary formats today's ledger record and the live deposit summary.
func (s *Service) DailySummary(ctx context.Context) (string, error) {
	sum, err := s.Deposit(ctx)
	if err != nil {
		return "", err
	}
	now := s.now()
	rec, ok, err := s.Day(ctx, locale.DateKey(now))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if ok {
		b.WriteString(notifier.FormatRecord(rec))
	} else {
		b.WriteString(fmt.Sprintf("📒 Aucun module validé le %s.\n", locale.DisplayDate(now)))
	}
	b.WriteString("\n")
	b.WriteString(notifier.FormatDeposit(sum, now))
	return b.String(), nil
}

// HandleCommand answers a chat command.
func (s *Service) HandleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	// "/etat@ParkLedgerBot" in group chats
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])

	switch cmd {
	case "/versement":
		sum, err := s.Deposit(ctx)
		if err != nil {
			return commandError(err)
		}
		return notifier.FormatDeposit(sum, s.now())

	case "/historique":
		records, err := s.History(ctx)
		if err != nil {
			return commandError(err)
		}
		return notifier.FormatHistory(records, historyLimit)

	case "/jour":
		if len(fields) < 2 {
			return "Usage: /jour AAAA-MM-JJ"
		}
		rec, ok, err := s.Day(ctx, fields[1])
		if errors.Is(err, ErrInvalidDate) {
			return "Date invalide, format attendu AAAA-MM-JJ."
		}
		if err != nil {
			return commandError(err)
		}
		if !ok {
			return fmt.Sprintf("Aucune donnée pour le %s.", fields[1])
		}
		return notifier.FormatRecord(rec)

	case "/etat":
		st, err := s.Status(ctx)
		if err != nil {
			return commandError(err)
		}
		return notifier.FormatStatus(notifier.StatusView{
			Today:         st.DisplayDate,
			ResetMarker:   st.ResetMarker,
			RolloverState: string(st.RolloverState),
			CutoffHour:    st.CutoffHour,
			Banner:        st.Banner,
			PersistError:  st.LastPersistError,
		})

	case "/resume":
		text, err := s.DailySummary(ctx)
		if err != nil {
			return commandError(err)
		}
		return text

	case "/start", "/aide", "/help":
		return notifier.HelpText()

	default:
		return "Commande inconnue.\n" + notifier.HelpText()
	}
}

func commandError(err error) string {
	return "❌ " + err.Error()
}
