package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/betslip-tracker/internal/tracker/importer"
	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/money"
)

// ImportMode define se o import substitui a coleção ou entra na frente dela
type ImportMode string

const (
	ImportAppend  ImportMode = "append"
	ImportReplace ImportMode = "replace"
)

// Add cria uma aposta: gera id e added_date quando ausentes e insere no início
func (s *Service) Add(ctx context.Context, b model.Bet) (model.Bet, error) {
	if err := s.prepare(&b); err != nil {
		return model.Bet{}, err
	}
	_, err := s.mutate(ctx, "add", b.ID, func(cur []model.Bet, now time.Time) ([]model.Bet, error) {
		if model.IndexOf(cur, b.ID) >= 0 {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidArgument, b.ID)
		}
		b.EnsureAddedDate(now)
		return append([]model.Bet{b}, cur...), nil
	})
	if err != nil {
		return model.Bet{}, err
	}
	return b, nil
}

// Patch faz merge literal dos campos enviados. added_date continua preenchido.
func (s *Service) Patch(ctx context.Context, id string, p model.BetPatch) (model.Bet, error) {
	if err := s.validate.Struct(p); err != nil {
		return model.Bet{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if p.StakeValue != nil && p.StakeValue.IsNegative() {
		return model.Bet{}, fmt.Errorf("%w: negative stake", ErrInvalidArgument)
	}

	var updated model.Bet
	_, err := s.mutate(ctx, "patch", id, func(cur []model.Bet, now time.Time) ([]model.Bet, error) {
		i := model.IndexOf(cur, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		updated = p.Apply(cur[i])
		updated.EnsureAddedDate(now)
		cur[i] = updated
		return cur, nil
	})
	if err != nil {
		return model.Bet{}, err
	}
	return updated, nil
}

// QuickStatus troca o status e recalcula win_value (WON = stake*coef, senão 0)
func (s *Service) QuickStatus(ctx context.Context, id string, status model.Status) (model.Bet, error) {
	if err := s.validate.Var(string(status), "required,oneof=WON LOST PENDING"); err != nil {
		return model.Bet{}, fmt.Errorf("%w: status %q", ErrInvalidArgument, status)
	}

	var updated model.Bet
	_, err := s.mutate(ctx, "status", id, func(cur []model.Bet, now time.Time) ([]model.Bet, error) {
		i := model.IndexOf(cur, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		updated = cur[i]
		updated.Status = status
		updated.WinValue = money.DerivedWinValue(status, updated.StakeValue, updated.Coef)
		updated.EnsureAddedDate(now)
		cur[i] = updated
		return cur, nil
	})
	if err != nil {
		return model.Bet{}, err
	}
	return updated, nil
}

// Delete remove pelo id
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, "delete", id, func(cur []model.Bet, _ time.Time) ([]model.Bet, error) {
		i := model.IndexOf(cur, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(cur[:i], cur[i+1:]...), nil
	})
	return err
}

// Replace substitui a coleção inteira preservando a ordem recebida
func (s *Service) Replace(ctx context.Context, bets []model.Bet) ([]model.Bet, error) {
	if bets == nil {
		return nil, fmt.Errorf("%w: collection required", ErrInvalidArgument)
	}
	next := model.Clone(bets)
	for i := range next {
		if err := s.prepare(&next[i]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	if err := uniqueIDs(next); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "replace", "", func(_ []model.Bet, now time.Time) ([]model.Bet, error) {
		for i := range next {
			next[i].EnsureAddedDate(now)
		}
		return next, nil
	})
}

// Import normaliza um documento JSON e aplica tudo ou nada
func (s *Service) Import(ctx context.Context, doc []byte, mode ImportMode) ([]model.Bet, error) {
	imported, err := importer.Parse(doc)
	if err != nil {
		return nil, err
	}
	for i := range imported {
		if err := s.prepare(&imported[i]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	switch mode {
	case ImportReplace, ImportAppend:
	case "":
		mode = ImportAppend
	default:
		return nil, fmt.Errorf("%w: import mode %q", ErrInvalidArgument, mode)
	}

	return s.mutate(ctx, "import", "", func(cur []model.Bet, now time.Time) ([]model.Bet, error) {
		next := imported
		if mode == ImportAppend {
			next = append(model.Clone(imported), cur...)
		}
		if err := uniqueIDs(next); err != nil {
			return nil, err
		}
		for i := range next {
			next[i].EnsureAddedDate(now)
		}
		return next, nil
	})
}

// prepare valida e completa os campos padrão de um registro novo
func (s *Service) prepare(b *model.Bet) error {
	b.ID = strings.TrimSpace(b.ID)
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = model.StatusPending
	}
	if err := s.validate.Struct(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if b.StakeValue.IsNegative() {
		return fmt.Errorf("%w: negative stake", ErrInvalidArgument)
	}
	if b.StakeCurrency == "" {
		b.StakeCurrency = model.CurrencyUSDT
	}
	if b.WinCurrency == "" {
		b.WinCurrency = b.StakeCurrency
	}
	return nil
}

func uniqueIDs(bets []model.Bet) error {
	seen := make(map[string]struct{}, len(bets))
	for _, b := range bets {
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidArgument, b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}
