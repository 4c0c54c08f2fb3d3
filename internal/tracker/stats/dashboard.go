package stats

import (
	"time"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/money"
	"github.com/radieske/betslip-tracker/internal/tracker/window"
)

// Dashboard é tudo que a tela mostra para um período e moeda de exibição
type Dashboard struct {
	Period   window.Period `json:"period"`
	Currency string        `json:"currency"`
	Summary  Summary       `json:"summary"`
	Streak   Streak        `json:"streak"`
	Bets     []model.Bet   `json:"bets"`
}

// Compute filtra pelo período e deriva métricas e streak do mesmo subconjunto.
// Profit sai na moeda de exibição; ROI e winrate não dependem da moeda.
func Compute(all []model.Bet, period window.Period, currency string, rate float64, now time.Time) Dashboard {
	if currency != model.CurrencyRUB {
		currency = model.CurrencyUSDT
	}
	subset := window.Filter(all, period, now)

	sum := Aggregate(subset, rate)
	sum.Profit = money.FromBase(sum.Profit, currency, rate).Round(2)

	return Dashboard{
		Period:   period,
		Currency: currency,
		Summary:  sum,
		Streak:   CurrentStreak(subset),
		Bets:     subset,
	}
}
