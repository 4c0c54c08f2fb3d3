// Package window seleciona as apostas de um período de calendário (dia, semana, mês)
// com base em added_date.
package window

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

// Period é a janela de calendário das estatísticas
type Period string

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
)

// ParsePeriod aceita day|week|month (case-insensitive)
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case Day, Week, Month:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", raw)
	}
}

// ParseDate interpreta DD/MM/YYYY no fuso de loc. Datas impossíveis (31/02)
// são rejeitadas comparando a data reconstruída com os componentes lidos.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, ok := digits(parts[0], 1, 2)
	if !ok {
		return time.Time{}, false
	}
	month, ok := digits(parts[1], 1, 2)
	if !ok {
		return time.Time{}, false
	}
	year, ok := digits(parts[2], 4, 4)
	if !ok {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// digits aceita só dígitos ASCII, sem sinal, com tamanho entre minLen e maxLen
func digits(field string, minLen, maxLen int) (int, bool) {
	if len(field) < minLen || len(field) > maxLen {
		return 0, false
	}
	for _, r := range field {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(field)
	return n, err == nil
}

// Filter devolve a subsequência (ordem preservada) que pertence ao período relativo a now
func Filter(bets []model.Bet, period Period, now time.Time) []model.Bet {
	match := matcher(period, now)
	out := make([]model.Bet, 0, len(bets))
	for _, b := range bets {
		if match(b.AddedDate) {
			out = append(out, b)
		}
	}
	return out
}

func matcher(period Period, now time.Time) func(string) bool {
	loc := now.Location()
	today := midnight(now)

	switch period {
	case Day:
		want := model.FormatDate(now)
		return func(added string) bool { return added == want }
	case Week:
		from := today.AddDate(0, 0, -6)
		return func(added string) bool {
			t, ok := ParseDate(added, loc)
			return ok && !t.Before(from) && !t.After(today)
		}
	case Month:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		last := first.AddDate(0, 1, -1)
		return func(added string) bool {
			t, ok := ParseDate(added, loc)
			return ok && !t.Before(first) && !t.After(last)
		}
	default:
		return func(string) bool { return false }
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
