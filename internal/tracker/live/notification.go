package live

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

// Kind identifica o formato de uma notificação push
type Kind int

const (
	// KindUnknown: payload fora dos formatos aceitos; só sinaliza "algo mudou"
	KindUnknown Kind = iota
	// KindFullReplace: array puro de apostas, sem timestamp
	KindFullReplace
	// KindFullReplaceWithTimestamp: {items, updatedAt}
	KindFullReplaceWithTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindFullReplace:
		return "full_replace"
	case KindFullReplaceWithTimestamp:
		return "full_replace_with_timestamp"
	default:
		return "unknown"
	}
}

// Notification é o payload push já decodificado
type Notification struct {
	Kind      Kind
	Items     []model.Bet
	UpdatedAt time.Time
}

type structuredPayload struct {
	Items     *[]model.Bet `json:"items"`
	UpdatedAt *time.Time   `json:"updatedAt"`
}

// DecodeNotification classifica o payload. Nunca falha: o que não for
// reconhecido vira KindUnknown.
func DecodeNotification(payload []byte) Notification {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return Notification{Kind: KindUnknown}
	}

	switch trimmed[0] {
	case '[':
		var items []model.Bet
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Notification{Kind: KindUnknown}
		}
		return Notification{Kind: KindFullReplace, Items: items}
	case '{':
		var p structuredPayload
		if err := json.Unmarshal(trimmed, &p); err != nil || p.Items == nil || p.UpdatedAt == nil {
			return Notification{Kind: KindUnknown}
		}
		items := *p.Items
		if items == nil {
			items = []model.Bet{}
		}
		return Notification{Kind: KindFullReplaceWithTimestamp, Items: items, UpdatedAt: *p.UpdatedAt}
	default:
		return Notification{Kind: KindUnknown}
	}
}
