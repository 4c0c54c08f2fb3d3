// Package service é o dono da coleção autoritativa de apostas.
//
// Toda mutação segue a mesma ordem: calcula a próxima coleção a partir de uma cópia,
// persiste snapshot + backup, troca o estado em memória e só então faz o broadcast.
// writeMu serializa o pipeline inteiro; mu protege apenas a troca do estado e nunca
// fica preso durante I/O, então leituras não esperam pelo banco.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/pkg/contracts/events"
)

var (
	ErrNotFound        = errors.New("bet not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Store é o colaborador de persistência
type Store interface {
	Load(ctx context.Context) ([]model.Bet, time.Time, error)
	SaveSnapshot(ctx context.Context, bets []model.Bet, at time.Time) error
	LoadRate(ctx context.Context) (model.ExchangeRate, bool, error)
	SaveRate(ctx context.Context, r model.ExchangeRate) error
}

// Publisher entrega o snapshot a todos os viewers conectados (best-effort)
type Publisher interface {
	PublishSnapshot(ctx context.Context, s events.BetsSnapshot) error
}

// Auditor recebe um evento por mutação bem-sucedida
type Auditor interface {
	Record(ctx context.Context, e events.BetsMutated) error
}

// Hooks são callbacks de métricas, todos opcionais
type Hooks struct {
	OnMutation     func(op string)
	OnPersistError func()
	OnBroadcast    func()
}

// Options agrupa dependências opcionais do Service
type Options struct {
	DefaultRate float64
	Auditor     Auditor
	Hooks       Hooks
	Now         func() time.Time
}

type Service struct {
	log      *zap.Logger
	store    Store
	pub      Publisher
	audit    Auditor
	hooks    Hooks
	now      func() time.Time
	validate *validator.Validate
	defRate  float64

	writeMu sync.Mutex

	mu        sync.RWMutex
	bets      []model.Bet
	updatedAt time.Time
	rate      model.ExchangeRate
}

func New(log *zap.Logger, st Store, pub Publisher, opts Options) *Service {
	s := &Service{
		log:      log,
		store:    st,
		pub:      pub,
		audit:    opts.Auditor,
		hooks:    opts.Hooks,
		now:      opts.Now,
		validate: validator.New(),
		defRate:  opts.DefaultRate,
		bets:     []model.Bet{},
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.defRate <= 0 {
		s.defRate = model.DefaultRubPerUsdt
	}
	return s
}

// Init carrega a coleção e a cotação do store. Sem cotação persistida,
// grava a cotação padrão.
func (s *Service) Init(ctx context.Context) error {
	bets, updated, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load bets: %w", err)
	}
	rate, ok, err := s.store.LoadRate(ctx)
	if err != nil {
		return fmt.Errorf("load rate: %w", err)
	}
	if !ok {
		rate = model.ExchangeRate{RubPerUsdt: s.defRate, UpdatedAt: s.now()}
		if err := s.store.SaveRate(ctx, rate); err != nil {
			return fmt.Errorf("save default rate: %w", err)
		}
		s.log.Info("exchange rate initialized", zap.Float64("rub_per_usdt", rate.RubPerUsdt))
	}
	if bets == nil {
		bets = []model.Bet{}
	}

	s.mu.Lock()
	s.bets = bets
	s.updatedAt = updated
	s.rate = rate
	s.mu.Unlock()

	s.log.Info("collection loaded", zap.Int("bets", len(bets)), zap.Time("updated_at", updated))
	return nil
}

// List retorna uma cópia da coleção na ordem atual
func (s *Service) List() []model.Bet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Clone(s.bets)
}

// LastUpdated é o marcador monotônico da última mutação persistida
func (s *Service) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Rate retorna a cotação atual
func (s *Service) Rate() model.ExchangeRate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// mutate executa o pipeline de escrita. fn recebe uma cópia da coleção atual.
// Se a persistência falhar nada muda em memória e nada é publicado.
// A auditoria roda depois de liberar writeMu: um broker lento só atrasa esta requisição.
func (s *Service) mutate(ctx context.Context, op, betID string, fn func(cur []model.Bet, now time.Time) ([]model.Bet, error)) ([]model.Bet, error) {
	next, ev, err := s.commit(ctx, op, betID, fn)
	if err != nil {
		return nil, err
	}
	s.record(ctx, ev)
	return next, nil
}

// commit aplica fn, persiste, troca o estado e publica, tudo sob writeMu
// para que a ordem dos snapshots publicados siga a ordem das escritas
func (s *Service) commit(ctx context.Context, op, betID string, fn func(cur []model.Bet, now time.Time) ([]model.Bet, error)) ([]model.Bet, events.BetsMutated, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	cur := model.Clone(s.bets)
	last := s.updatedAt
	s.mu.RUnlock()

	now := s.now()
	if !now.After(last) {
		now = last.Add(time.Millisecond)
	}

	next, err := fn(cur, now)
	if err != nil {
		return nil, events.BetsMutated{}, err
	}

	if err := s.store.SaveSnapshot(ctx, next, now); err != nil {
		if s.hooks.OnPersistError != nil {
			s.hooks.OnPersistError()
		}
		s.log.Error("persist snapshot failed", zap.String("op", op), zap.Error(err))
		return nil, events.BetsMutated{}, fmt.Errorf("persist snapshot: %w", err)
	}

	s.mu.Lock()
	s.bets = next
	s.updatedAt = now
	s.mu.Unlock()

	if s.hooks.OnMutation != nil {
		s.hooks.OnMutation(op)
	}
	s.log.Info("collection mutated", zap.String("op", op), zap.String("bet_id", betID), zap.Int("bets", len(next)))

	s.broadcast(ctx, next, now)
	return next, events.BetsMutated{Op: op, BetID: betID, Count: len(next), UpdatedAt: now}, nil
}

func (s *Service) broadcast(ctx context.Context, bets []model.Bet, at time.Time) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishSnapshot(ctx, events.BetsSnapshot{Items: model.Clone(bets), UpdatedAt: at}); err != nil {
		// entrega é best-effort: o estado já está persistido
		s.log.Warn("broadcast snapshot failed", zap.Error(err))
		return
	}
	if s.hooks.OnBroadcast != nil {
		s.hooks.OnBroadcast()
	}
}

func (s *Service) record(ctx context.Context, e events.BetsMutated) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, e); err != nil {
		s.log.Warn("audit record failed", zap.String("op", e.Op), zap.Error(err))
	}
}
