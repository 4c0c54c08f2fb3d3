package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/money"
	"github.com/radieske/betslip-tracker/internal/tracker/stats"
	"github.com/radieske/betslip-tracker/internal/tracker/window"
)

// SetRate troca a cotação inteira. Rejeita valores não finitos ou <= 0.
func (s *Service) SetRate(ctx context.Context, rubPerUsdt float64) (model.ExchangeRate, error) {
	if !money.ValidRate(rubPerUsdt) {
		return model.ExchangeRate{}, fmt.Errorf("%w: rate must be a finite positive number", ErrInvalidArgument)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	r := model.ExchangeRate{RubPerUsdt: rubPerUsdt, UpdatedAt: s.now()}
	if err := s.store.SaveRate(ctx, r); err != nil {
		if s.hooks.OnPersistError != nil {
			s.hooks.OnPersistError()
		}
		return model.ExchangeRate{}, fmt.Errorf("persist rate: %w", err)
	}

	s.mu.Lock()
	s.rate = r
	s.mu.Unlock()

	if s.hooks.OnMutation != nil {
		s.hooks.OnMutation("rate")
	}
	s.log.Info("exchange rate updated", zap.Float64("rub_per_usdt", rubPerUsdt))
	return r, nil
}

// Summary calcula o dashboard do período com os mesmos componentes usados pelos viewers
func (s *Service) Summary(period window.Period, currency string, now time.Time) stats.Dashboard {
	s.mu.RLock()
	bets := model.Clone(s.bets)
	rate := s.rate.RubPerUsdt
	s.mu.RUnlock()
	return stats.Compute(bets, period, currency, rate, now)
}
