package tui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/radieske/betslip-tracker/internal/tracker/live"
	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/stats"
)

// SummaryView mostra as métricas do período e o estado da conexão
type SummaryView struct {
	textView *tview.TextView
}

func NewSummaryView() *SummaryView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	tv.SetTitle(" Summary ").SetBorder(true)
	return &SummaryView{textView: tv}
}

func (v *SummaryView) Widget() tview.Primitive {
	return v.textView
}

func (v *SummaryView) Update(d stats.Dashboard, snap live.Snapshot, now time.Time) {
	v.textView.SetTitle(fmt.Sprintf(" Summary (%s) ", d.Period))
	v.textView.SetText(summaryText(d, snap, now))
}

func summaryText(d stats.Dashboard, snap live.Snapshot, now time.Time) string {
	s := d.Summary

	profitColor := "white"
	switch {
	case s.Profit.IsPositive():
		profitColor = "green"
	case s.Profit.IsNegative():
		profitColor = "red"
	}

	stateColor := "red"
	switch snap.State {
	case live.Synced:
		stateColor = "green"
	case live.Connecting:
		stateColor = "yellow"
	}

	tentative := ""
	if snap.Tentative {
		tentative = " [yellow](pending sync)[-]"
	}

	return fmt.Sprintf(`[yellow]Results[-]
Settled: %d (W %d / L %d)
Winrate: %d%%
Profit: [%s]%s %s[-]
ROI: %s%%
Avg odds: %s
Streak: %s

[yellow]Sync[-]
State: [%s]%s[-]%s
Updated: %s
Rate: %.2f RUB/USDT
`,
		s.Total, s.Won, s.Lost,
		s.WinRate,
		profitColor, s.Profit.StringFixed(2), d.Currency,
		s.ROI,
		s.AvgOdds,
		streakText(d.Streak),
		stateColor, snap.State, tentative,
		formatTimeAgo(snap.Marker, now),
		snap.Rate.RubPerUsdt,
	)
}

func streakText(st stats.Streak) string {
	if st.Length == 0 {
		return "-"
	}
	color := "red"
	if st.Outcome == model.StatusWon {
		color = "green"
	}
	return fmt.Sprintf("[%s]%s x%d[-]", color, st.Outcome, st.Length)
}

// formatTimeAgo formata o marcador como "X ago"
func formatTimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	elapsed := now.Sub(t)
	switch {
	case elapsed < time.Minute:
		return fmt.Sprintf("%.0fs ago", max(elapsed.Seconds(), 0))
	case elapsed < time.Hour:
		return fmt.Sprintf("%.0fm ago", elapsed.Minutes())
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%.0fh ago", elapsed.Hours())
	default:
		return fmt.Sprintf("%.0fd ago", elapsed.Hours()/24)
	}
}
