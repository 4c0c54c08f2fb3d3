// Package money converte os campos brutos de uma aposta em lucro/prejuízo
// e faz a conversão entre USDT (base) e RUB (referência).
package money

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

var fallbackRate = decimal.NewFromFloat(model.DefaultRubPerUsdt)

// NormalizedResult retorna o resultado assinado da aposta na moeda do próprio resultado.
//
//	WON:     win_value - stake_value (win_value é o retorno bruto)
//	LOST:    win_value se já vier negativo, senão -stake_value, senão 0
//	PENDING: sempre 0
func NormalizedResult(b model.Bet) decimal.Decimal {
	switch b.Status {
	case model.StatusWon:
		return b.WinValue.Sub(b.StakeValue)
	case model.StatusLost:
		if b.WinValue.IsNegative() {
			return b.WinValue
		}
		if b.StakeValue.IsPositive() {
			return b.StakeValue.Neg()
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// EffectiveRate devolve a cotação válida ou o fallback quando ausente/corrompida
func EffectiveRate(rate float64) decimal.Decimal {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return fallbackRate
	}
	return decimal.NewFromFloat(rate)
}

// ValidRate indica se a cotação pode ser aceita numa escrita
func ValidRate(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0) && rate > 0
}

// ToBase expressa amount em USDT: valores em RUB são divididos pela cotação
func ToBase(amount decimal.Decimal, currency string, rate float64) decimal.Decimal {
	if currency == model.CurrencyRUB {
		return amount.Div(EffectiveRate(rate))
	}
	return amount
}

// FromBase converte um valor em USDT para a moeda de exibição escolhida
func FromBase(amount decimal.Decimal, display string, rate float64) decimal.Decimal {
	if display == model.CurrencyRUB {
		return amount.Mul(EffectiveRate(rate))
	}
	return amount
}

// ResultInBase é o resultado normalizado já convertido para USDT
func ResultInBase(b model.Bet, rate float64) decimal.Decimal {
	return ToBase(NormalizedResult(b), b.ResultCurrency(), rate)
}

// StakeInBase é a stake convertida para USDT
func StakeInBase(b model.Bet, rate float64) decimal.Decimal {
	cur := b.StakeCurrency
	if cur == "" {
		cur = model.CurrencyUSDT
	}
	return ToBase(b.StakeValue, cur, rate)
}

// DerivedWinValue calcula win_value a partir de status/stake/coef
// (usado pelo import e pela troca rápida de status)
func DerivedWinValue(status model.Status, stake, coef decimal.Decimal) decimal.Decimal {
	if status == model.StatusWon {
		return stake.Mul(coef)
	}
	return decimal.Zero
}
