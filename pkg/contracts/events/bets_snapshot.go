package events

import (
	"time"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

// BetsSnapshot é a notificação enviada aos viewers depois de cada mutação.
// Sempre carrega a coleção inteira, nunca um delta.
type BetsSnapshot struct {
	Items     []model.Bet `json:"items"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
