package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BetPatch carrega apenas os campos enviados num PATCH.
// O merge é literal: win_value não é recalculado a partir de status/stake/coef.
type BetPatch struct {
	Match         *string          `json:"match,omitempty"`
	Bet           *string          `json:"bet,omitempty"`
	Status        *Status          `json:"status,omitempty" validate:"omitempty,oneof=WON LOST PENDING"`
	StakeValue    *decimal.Decimal `json:"stake_value,omitempty"`
	StakeCurrency *string          `json:"stake_currency,omitempty"`
	Coef          *decimal.Decimal `json:"coef,omitempty"`
	WinValue      *decimal.Decimal `json:"win_value,omitempty"`
	WinCurrency   *string          `json:"win_currency,omitempty"`
	AddedDate     *string          `json:"added_date,omitempty"`
	Time          *string          `json:"time,omitempty"`
}

// Apply devolve uma cópia de b com os campos do patch aplicados
func (p BetPatch) Apply(b Bet) Bet {
	if p.Match != nil {
		b.Match = *p.Match
	}
	if p.Bet != nil {
		b.Bet = *p.Bet
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.StakeValue != nil {
		b.StakeValue = *p.StakeValue
	}
	if p.StakeCurrency != nil {
		b.StakeCurrency = *p.StakeCurrency
	}
	if p.Coef != nil {
		b.Coef = *p.Coef
	}
	if p.WinValue != nil {
		b.WinValue = *p.WinValue
	}
	if p.WinCurrency != nil {
		b.WinCurrency = *p.WinCurrency
	}
	// added_date nunca fica vazio depois de criado
	if p.AddedDate != nil && strings.TrimSpace(*p.AddedDate) != "" {
		b.AddedDate = *p.AddedDate
	}
	if p.Time != nil {
		b.Time = *p.Time
	}
	return b
}
