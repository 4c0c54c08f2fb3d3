package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

var betHeaders = []string{"Date", "Time", "Match", "Bet", "Stake", "Odds", "Result", "Status"}

// BetsView lista as apostas do período na ordem da coleção
type BetsView struct {
	table *tview.Table
}

func NewBetsView() *BetsView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0).
		SetSelectable(true, false)
	table.SetTitle(" Bets ").SetBorder(true)

	v := &BetsView{table: table}
	v.header()
	return v
}

func (v *BetsView) Widget() tview.Primitive {
	return v.table
}

func (v *BetsView) header() {
	for col, h := range betHeaders {
		v.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetSelectable(false))
	}
}

func (v *BetsView) Update(bets []model.Bet) {
	v.table.Clear()
	v.header()

	for i, b := range bets {
		row := i + 1
		cells := []string{
			b.AddedDate,
			b.Time,
			truncate(b.Match, 32),
			truncate(b.Bet, 24),
			fmt.Sprintf("%s %s", b.StakeValue.StringFixed(2), b.StakeCurrency),
			b.Coef.StringFixed(2),
			fmt.Sprintf("%s %s", b.WinValue.StringFixed(2), b.ResultCurrency()),
			string(b.Status),
		}
		for col, text := range cells {
			cell := tview.NewTableCell(text)
			if col == len(cells)-1 {
				cell.SetTextColor(statusColor(b.Status))
			}
			v.table.SetCell(row, col, cell)
		}
	}
	v.table.SetTitle(fmt.Sprintf(" Bets (%d) ", len(bets)))
}

func statusColor(s model.Status) tcell.Color {
	switch s {
	case model.StatusWon:
		return tcell.ColorGreen
	case model.StatusLost:
		return tcell.ColorRed
	default:
		return tcell.ColorYellow
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
