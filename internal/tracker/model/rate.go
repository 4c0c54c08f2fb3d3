package model

import "time"

// DefaultRubPerUsdt é a cotação usada quando nada foi persistido ainda
const DefaultRubPerUsdt = 80.78

// ExchangeRate é a cotação única do processo: RUB por 1 USDT
type ExchangeRate struct {
	RubPerUsdt float64   `json:"rubPerUsdt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

