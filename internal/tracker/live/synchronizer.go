// Package live mantém a cópia local do viewer consistente com o servidor:
// um fetch completo ao sincronizar e, depois, substituições completas vindas do canal push.
package live

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/stats"
	"github.com/radieske/betslip-tracker/internal/tracker/window"
)

// State é o estado da conexão push
type State int

const (
	Disconnected State = iota
	Connecting
	Synced
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Synced:
		return "SYNCED"
	default:
		return "DISCONNECTED"
	}
}

const (
	defaultRetryDelay = 3 * time.Second
	maxRetryDelay     = 30 * time.Second
	fetchTimeout      = 10 * time.Second
)

// Snapshot é a visão imutável do estado local, entregue em OnChange
type Snapshot struct {
	State     State
	Bets      []model.Bet
	Marker    time.Time
	Rate      model.ExchangeRate
	Tentative bool
}

// Options agrupa parâmetros opcionais
type Options struct {
	Now        func() time.Time
	RetryDelay time.Duration
	OnChange   func(Snapshot)
}

type Synchronizer struct {
	log      *zap.Logger
	src      Source
	tr       Transport
	markers  MarkerStore
	now      func() time.Time
	retry    time.Duration
	onChange func(Snapshot)

	mu        sync.Mutex
	state     State
	bets      []model.Bet
	tentative []model.Bet
	marker    time.Time
	rate      model.ExchangeRate
	// gen avança a cada snapshot autoritativo vindo do push; um fetch de apostas
	// iniciado numa geração anterior é descartado
	gen uint64

	saveMu sync.Mutex
	saved  time.Time
}

func New(log *zap.Logger, src Source, tr Transport, markers MarkerStore, opts Options) *Synchronizer {
	s := &Synchronizer{
		log:      log,
		src:      src,
		tr:       tr,
		markers:  markers,
		now:      opts.Now,
		retry:    opts.RetryDelay,
		onChange: opts.OnChange,
		bets:     []model.Bet{},
		rate:     model.ExchangeRate{RubPerUsdt: model.DefaultRubPerUsdt},
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.retry <= 0 {
		s.retry = defaultRetryDelay
	}
	return s
}

// Restore carrega o marcador persistido antes de qualquer resposta da rede
func (s *Synchronizer) Restore() error {
	if s.markers == nil {
		return nil
	}
	t, ok, err := s.markers.Load()
	if err != nil || !ok {
		return err
	}
	s.mu.Lock()
	if t.After(s.marker) {
		s.marker = t
	}
	s.mu.Unlock()

	s.saveMu.Lock()
	s.saved = t
	s.saveMu.Unlock()

	s.notify()
	return nil
}

// Run mantém a assinatura viva até ctx ser cancelado, reconectando com backoff
func (s *Synchronizer) Run(ctx context.Context) error {
	delay := s.retry
	for {
		s.setState(Connecting)

		opened := false
		err := s.tr.Subscribe(ctx,
			func() {
				opened = true
				s.setState(Synced)
				go s.resync(ctx)
			},
			func(payload []byte) {
				s.Apply(ctx, DecodeNotification(payload))
			},
		)
		s.setState(Disconnected)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if opened {
			delay = s.retry
		}
		if err != nil {
			s.log.Warn("push subscription dropped", zap.Error(err), zap.Duration("retry_in", delay))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if !opened {
			delay = min(delay*2, maxRetryDelay)
		}
	}
}

// Apply aplica uma notificação na ordem de chegada
func (s *Synchronizer) Apply(ctx context.Context, n Notification) {
	switch n.Kind {
	case KindFullReplace:
		s.replace(n.Items, time.Time{})
		// o payload não traz timestamp: busca o marcador autoritativo
		go s.fetchMarker(ctx)
	case KindFullReplaceWithTimestamp:
		s.replace(n.Items, n.UpdatedAt)
	default:
		s.mu.Lock()
		marker := s.advanceMarker(s.now())
		s.mu.Unlock()
		s.persistMarker(marker)
		s.notify()
	}
}

// RemoveTentative esconde uma aposta localmente até o próximo snapshot autoritativo
func (s *Synchronizer) RemoveTentative(id string) {
	s.mu.Lock()
	base := s.tentative
	if base == nil {
		base = s.bets
	}
	i := model.IndexOf(base, id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	next := model.Clone(base)
	s.tentative = append(next[:i], next[i+1:]...)
	s.mu.Unlock()
	s.notify()
}

// Snapshot retorna uma cópia do estado local
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// View deriva o dashboard do estado local, sem I/O
func (s *Synchronizer) View(period window.Period, currency string, now time.Time) stats.Dashboard {
	snap := s.Snapshot()
	return stats.Compute(snap.Bets, period, currency, snap.Rate.RubPerUsdt, now)
}

func (s *Synchronizer) snapshotLocked() Snapshot {
	visible := s.bets
	if s.tentative != nil {
		visible = s.tentative
	}
	return Snapshot{
		State:     s.state,
		Bets:      model.Clone(visible),
		Marker:    s.marker,
		Rate:      s.rate,
		Tentative: s.tentative != nil,
	}
}

// resync busca apostas, marcador e cotação em paralelo; cada resultado é
// aplicado assim que chega, em qualquer ordem
func (s *Synchronizer) resync(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		bets, err := s.src.FetchBets(ctx)
		if err != nil {
			s.log.Warn("fetch bets failed", zap.Error(err))
			return
		}
		s.applyFetchedBets(bets, gen)
	}()
	go func() {
		defer wg.Done()
		s.fetchMarker(ctx)
	}()
	go func() {
		defer wg.Done()
		rate, err := s.src.FetchRate(ctx)
		if err != nil {
			s.log.Warn("fetch rate failed", zap.Error(err))
			return
		}
		s.mu.Lock()
		s.rate = rate
		s.mu.Unlock()
		s.notify()
	}()
	wg.Wait()
}

func (s *Synchronizer) fetchMarker(ctx context.Context) {
	t, err := s.src.FetchMarker(ctx)
	if err != nil {
		s.log.Warn("fetch marker failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	marker := s.advanceMarker(t)
	s.mu.Unlock()
	s.persistMarker(marker)
	s.notify()
}

func (s *Synchronizer) applyFetchedBets(bets []model.Bet, gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug("discarding stale bets fetch", zap.Uint64("fetch_gen", gen))
		return
	}
	s.bets = model.Clone(bets)
	s.tentative = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Synchronizer) replace(items []model.Bet, at time.Time) {
	s.mu.Lock()
	s.bets = model.Clone(items)
	s.tentative = nil
	s.gen++
	marker := s.marker
	if !at.IsZero() {
		marker = s.advanceMarker(at)
	}
	s.mu.Unlock()

	s.persistMarker(marker)
	s.notify()
}

// advanceMarker nunca deixa o marcador andar para trás. Chamar com mu travado.
func (s *Synchronizer) advanceMarker(t time.Time) time.Time {
	if t.After(s.marker) {
		s.marker = t
	}
	return s.marker
}

func (s *Synchronizer) persistMarker(t time.Time) {
	if s.markers == nil || t.IsZero() {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if !t.After(s.saved) {
		return
	}
	if err := s.markers.Save(t); err != nil {
		s.log.Warn("persist marker failed", zap.Error(err))
		return
	}
	s.saved = t
}

func (s *Synchronizer) setState(st State) {
	s.mu.Lock()
	changed := s.state != st
	s.state = st
	s.mu.Unlock()
	if changed {
		s.log.Info("push state changed", zap.Stringer("state", st))
		s.notify()
	}
}

func (s *Synchronizer) notify() {
	if s.onChange == nil {
		return
	}
	s.onChange(s.Snapshot())
}
