// Package tui é o dashboard de terminal do viewer.
package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/radieske/betslip-tracker/internal/tracker/live"
	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/stats"
	"github.com/radieske/betslip-tracker/internal/tracker/window"
)

// Source é o estado local do viewer (o live.Synchronizer)
type Source interface {
	Snapshot() live.Snapshot
	View(period window.Period, currency string, now time.Time) stats.Dashboard
}

// App é o dashboard: resumo à esquerda, apostas do período à direita
type App struct {
	app     *tview.Application
	summary *SummaryView
	bets    *BetsView
	help    *tview.TextView

	src     Source
	changes <-chan struct{}
	now     func() time.Time

	mu       sync.Mutex
	period   window.Period
	currency string
}

// NewApp cria o dashboard. changes sinaliza que o estado local mudou.
func NewApp(src Source, changes <-chan struct{}, period window.Period, currency string) *App {
	a := &App{
		app:      tview.NewApplication(),
		summary:  NewSummaryView(),
		bets:     NewBetsView(),
		help:     tview.NewTextView().SetDynamicColors(true),
		src:      src,
		changes:  changes,
		now:      time.Now,
		period:   period,
		currency: currency,
	}
	a.help.SetText("[yellow]d[-] day  [yellow]w[-] week  [yellow]m[-] month  [yellow]c[-] currency  [yellow]q[-] quit")

	body := tview.NewFlex().
		AddItem(a.summary.Widget(), 0, 1, false).
		AddItem(a.bets.Widget(), 0, 3, true)
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(a.help, 1, 0, false)
	a.app.SetRoot(layout, true)

	a.setupKeyboard()
	return a
}

func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			a.Stop()
			return nil
		}
		if event.Key() != tcell.KeyRune {
			return event
		}
		switch event.Rune() {
		case 'q', 'Q':
			a.Stop()
		case 'd', 'D':
			a.setPeriod(window.Day)
		case 'w', 'W':
			a.setPeriod(window.Week)
		case 'm', 'M':
			a.setPeriod(window.Month)
		case 'c', 'C':
			a.toggleCurrency()
		default:
			return event
		}
		return nil
	})
}

// Run bloqueia até o usuário sair ou ctx ser cancelado
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.updateLoop(ctx)
	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	a.render()
	if err := a.app.Run(); err != nil {
		return fmt.Errorf("tui run: %w", err)
	}
	return nil
}

func (a *App) Stop() {
	a.app.Stop()
}

// updateLoop redesenha a cada mudança de estado e a cada segundo
// (idade do marcador e virada de dia)
func (a *App) updateLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.changes:
			a.app.QueueUpdateDraw(a.render)
		case <-ticker.C:
			a.app.QueueUpdateDraw(a.render)
		}
	}
}

func (a *App) setPeriod(p window.Period) {
	a.mu.Lock()
	a.period = p
	a.mu.Unlock()
	a.render()
}

func (a *App) toggleCurrency() {
	a.mu.Lock()
	if a.currency == model.CurrencyRUB {
		a.currency = model.CurrencyUSDT
	} else {
		a.currency = model.CurrencyRUB
	}
	a.mu.Unlock()
	a.render()
}

// render recalcula tudo a partir do estado local; roda na goroutine da UI
func (a *App) render() {
	a.mu.Lock()
	period, currency := a.period, a.currency
	a.mu.Unlock()

	now := a.now()
	snap := a.src.Snapshot()
	dash := a.src.View(period, currency, now)

	a.summary.Update(dash, snap, now)
	a.bets.Update(dash.Bets)
}
