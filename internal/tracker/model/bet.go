package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status representa o resultado de uma aposta
type Status string

const (
	StatusWon     Status = "WON"
	StatusLost    Status = "LOST"
	StatusPending Status = "PENDING"
)

// Moedas suportadas: USDT é a base, RUB a referência
const (
	CurrencyUSDT = "USDT"
	CurrencyRUB  = "RUB"
)

// DateLayout é o formato DD/MM/YYYY usado em added_date
const DateLayout = "02/01/2006"

// ParseStatus normaliza status vindos de fontes não confiáveis (import, legado).
// Qualquer valor desconhecido vira PENDING.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "won", "win", "выиграна", "выигрыш":
		return StatusWon
	case "lost", "lose", "loss", "проиграна", "проигрыш":
		return StatusLost
	default:
		return StatusPending
	}
}

// Decided indica se o resultado já é conhecido
func (s Status) Decided() bool {
	return s == StatusWon || s == StatusLost
}

// Bet é um registro de aposta. A ordem da coleção é posicional (mais recente primeiro).
type Bet struct {
	ID            string          `json:"id"`
	Match         string          `json:"match"`
	Bet           string          `json:"bet"`
	Status        Status          `json:"status" validate:"required,oneof=WON LOST PENDING"`
	StakeValue    decimal.Decimal `json:"stake_value"`
	StakeCurrency string          `json:"stake_currency"`
	Coef          decimal.Decimal `json:"coef"`
	WinValue      decimal.Decimal `json:"win_value"`
	WinCurrency   string          `json:"win_currency,omitempty"`
	AddedDate     string          `json:"added_date"`
	Time          string          `json:"time"`
}

// ResultCurrency é a moeda em que o resultado (win_value) está expresso
func (b Bet) ResultCurrency() string {
	if b.WinCurrency != "" {
		return b.WinCurrency
	}
	if b.StakeCurrency != "" {
		return b.StakeCurrency
	}
	return CurrencyUSDT
}

// EnsureAddedDate preenche added_date com a data de hoje quando ausente
func (b *Bet) EnsureAddedDate(now time.Time) {
	if strings.TrimSpace(b.AddedDate) == "" {
		b.AddedDate = FormatDate(now)
	}
}

// FormatDate formata uma data no layout DD/MM/YYYY
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Clone copia a coleção preservando a ordem
func Clone(bets []Bet) []Bet {
	out := make([]Bet, len(bets))
	copy(out, bets)
	return out
}

// IndexOf retorna a posição do id na coleção ou -1
func IndexOf(bets []Bet, id string) int {
	for i := range bets {
		if bets[i].ID == id {
			return i
		}
	}
	return -1
}
