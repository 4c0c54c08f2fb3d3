package stats

import "github.com/radieske/betslip-tracker/internal/tracker/model"

// Streak é a sequência atual de resultados iguais. Outcome vazio significa "sem streak".
type Streak struct {
	Outcome model.Status `json:"outcome,omitempty"`
	Length  int          `json:"length"`
}

// CurrentStreak percorre o subconjunto (mais recente primeiro) ignorando PENDING.
// O alvo é o status da primeira aposta decidida; a contagem para na primeira divergência.
func CurrentStreak(ordered []model.Bet) Streak {
	var st Streak
	for _, b := range ordered {
		if !b.Status.Decided() {
			continue
		}
		if st.Outcome == "" {
			st.Outcome = b.Status
		}
		if b.Status != st.Outcome {
			break
		}
		st.Length++
	}
	return st
}
