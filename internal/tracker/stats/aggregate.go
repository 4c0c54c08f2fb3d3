// Package stats reduz um subconjunto de apostas em winrate, lucro, ROI, odd média e streak.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/money"
)

var hundred = decimal.NewFromInt(100)

// Summary são as métricas de um período. Profit está em USDT.
type Summary struct {
	Total   int             `json:"total"`
	Won     int             `json:"won"`
	Lost    int             `json:"lost"`
	WinRate int             `json:"winRate"`
	Profit  decimal.Decimal `json:"profit"`
	ROI     string          `json:"roi"`
	AvgOdds string          `json:"avgOdds"`
}

// Aggregate calcula as métricas considerando só apostas decididas (PENDING fica de fora
// de qualquer numerador ou denominador).
func Aggregate(subset []model.Bet, rate float64) Summary {
	s := Summary{Profit: decimal.Zero, ROI: "0.0", AvgOdds: "0.00"}

	stakes := decimal.Zero
	odds := decimal.Zero
	for _, b := range subset {
		if !b.Status.Decided() {
			continue
		}
		s.Total++
		if b.Status == model.StatusWon {
			s.Won++
		} else {
			s.Lost++
		}
		s.Profit = s.Profit.Add(money.ResultInBase(b, rate))
		stakes = stakes.Add(money.StakeInBase(b, rate))
		odds = odds.Add(b.Coef)
	}

	if s.Total == 0 {
		return s
	}

	// round(100*won/total) com meio arredondado pra cima
	s.WinRate = (200*s.Won + s.Total) / (2 * s.Total)
	s.AvgOdds = odds.Div(decimal.NewFromInt(int64(s.Total))).StringFixed(2)
	if !stakes.IsZero() {
		s.ROI = s.Profit.Mul(hundred).Div(stakes).StringFixed(1)
	}
	return s
}
