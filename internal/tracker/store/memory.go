package store

import (
	"context"
	"sync"
	"time"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

// Backup é uma cópia imutável da coleção num instante
type Backup struct {
	TakenAt time.Time   `json:"takenAt"`
	Items   []model.Bet `json:"items"`
}

// Memory é um store em processo (ambiente local e testes)
type Memory struct {
	mu      sync.Mutex
	bets    []model.Bet
	updated time.Time
	rate    *model.ExchangeRate
	backups []Backup
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(_ context.Context) ([]model.Bet, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.Clone(m.bets), m.updated, nil
}

func (m *Memory) SaveSnapshot(_ context.Context, bets []model.Bet, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bets = model.Clone(bets)
	m.updated = at
	m.backups = append(m.backups, Backup{TakenAt: at, Items: model.Clone(bets)})
	return nil
}

func (m *Memory) LoadRate(_ context.Context) (model.ExchangeRate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rate == nil {
		return model.ExchangeRate{}, false, nil
	}
	return *m.rate, true, nil
}

func (m *Memory) SaveRate(_ context.Context, r model.ExchangeRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = &r
	return nil
}

// Backups lista os snapshots mais recentes primeiro
func (m *Memory) Backups(_ context.Context, limit int) ([]Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Backup, 0, limit)
	for i := len(m.backups) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.backups[i])
	}
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
