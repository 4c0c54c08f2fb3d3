// Package pubsub entrega snapshots da coleção aos viewers, via Redis quando
// configurado ou direto no hub local.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/radieske/betslip-tracker/pkg/contracts/events"
)

// HubPublisher publica direto no hub do processo (instância única, sem Redis)
type HubPublisher struct {
	hub Broadcaster
}

func NewHubPublisher(hub Broadcaster) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) PublishSnapshot(_ context.Context, s events.BetsSnapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	p.hub.Broadcast(payload)
	return nil
}
