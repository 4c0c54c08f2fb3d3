package events

import "time"

// Evento publicado no tópico "bets_mutations" (trilha de auditoria)
type BetsMutated struct {
	Op        string    `json:"op"` // add | patch | delete | replace | status | import
	BetID     string    `json:"bet_id,omitempty"`
	Count     int       `json:"count"` // tamanho da coleção após a mutação
	UpdatedAt time.Time `json:"updated_at"`
}
