package live

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/window"
)

var t0 = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu      sync.Mutex
	bets    []model.Bet
	marker  time.Time
	rate    model.ExchangeRate
	err     error
	markerN int
}

func (f *fakeSource) FetchBets(context.Context) ([]model.Bet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.Clone(f.bets), f.err
}

func (f *fakeSource) FetchMarker(context.Context) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markerN++
	return f.marker, f.err
}

func (f *fakeSource) FetchRate(context.Context) (model.ExchangeRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rate, f.err
}

func (f *fakeSource) markerCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markerN
}

// chanTransport entrega as mensagens de msgs; cada assinatura termina quando drop recebe
type chanTransport struct {
	msgs  chan []byte
	drop  chan struct{}
	mu    sync.Mutex
	opens int
	fail  int
}

func newChanTransport() *chanTransport {
	return &chanTransport{msgs: make(chan []byte), drop: make(chan struct{})}
}

func (c *chanTransport) Subscribe(ctx context.Context, onOpen func(), onMessage func([]byte)) error {
	c.mu.Lock()
	if c.fail > 0 {
		c.fail--
		c.mu.Unlock()
		return ErrTransportUnavailable
	}
	c.opens++
	c.mu.Unlock()

	onOpen()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.drop:
			return errors.New("connection reset")
		case m := <-c.msgs:
			onMessage(m)
		}
	}
}

func (c *chanTransport) openCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}

func bets(ids ...string) []model.Bet {
	out := make([]model.Bet, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Bet{ID: id, Status: model.StatusPending, AddedDate: "15/03/2024"})
	}
	return out
}

func ids(bs []model.Bet) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}

func newSync(src Source, tr Transport, markers MarkerStore) *Synchronizer {
	return New(zap.NewNop(), src, tr, markers, Options{
		Now:        func() time.Time { return t0.Add(time.Hour) },
		RetryDelay: 10 * time.Millisecond,
	})
}

func TestSynchronizer_ApplyStructuredIsIdempotent(t *testing.T) {
	s := newSync(&fakeSource{}, nil, nil)
	n := DecodeNotification([]byte(`{"items":[{"id":"a"},{"id":"b"}],"updatedAt":"2024-03-15T12:00:00Z"}`))

	s.Apply(context.Background(), n)
	first := s.Snapshot()
	s.Apply(context.Background(), n)
	second := s.Snapshot()

	assert.Equal(t, []string{"a", "b"}, ids(second.Bets))
	assert.Equal(t, first.Bets, second.Bets)
	assert.True(t, second.Marker.Equal(t0))
	assert.Equal(t, first.Marker, second.Marker)
}

func TestSynchronizer_BareArrayRefetchesMarker(t *testing.T) {
	src := &fakeSource{marker: t0.Add(5 * time.Minute)}
	s := newSync(src, nil, nil)

	s.Apply(context.Background(), DecodeNotification([]byte(`[{"id":"x"}]`)))

	assert.Equal(t, []string{"x"}, ids(s.Snapshot().Bets))
	require.Eventually(t, func() bool { return src.markerCalls() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return s.Snapshot().Marker.Equal(t0.Add(5 * time.Minute)) }, time.Second, 5*time.Millisecond)
}

func TestSynchronizer_UnknownRefreshesMarkerOnly(t *testing.T) {
	s := newSync(&fakeSource{}, nil, nil)
	s.Apply(context.Background(), DecodeNotification([]byte(`{"items":[{"id":"a"}],"updatedAt":"2024-03-15T12:00:00Z"}`)))

	s.Apply(context.Background(), DecodeNotification([]byte(`{"type":"changed"}`)))

	snap := s.Snapshot()
	assert.Equal(t, []string{"a"}, ids(snap.Bets))
	assert.True(t, snap.Marker.Equal(t0.Add(time.Hour)))
}

func TestSynchronizer_MarkerNeverGoesBack(t *testing.T) {
	s := newSync(&fakeSource{}, nil, nil)
	s.Apply(context.Background(), Notification{Kind: KindFullReplaceWithTimestamp, Items: bets("a"), UpdatedAt: t0})
	s.Apply(context.Background(), Notification{Kind: KindFullReplaceWithTimestamp, Items: bets("b"), UpdatedAt: t0.Add(-time.Minute)})

	snap := s.Snapshot()
	assert.Equal(t, []string{"b"}, ids(snap.Bets), "data follows arrival order")
	assert.True(t, snap.Marker.Equal(t0))
}

func TestSynchronizer_TentativeSupersededBySnapshot(t *testing.T) {
	s := newSync(&fakeSource{}, nil, nil)
	s.Apply(context.Background(), Notification{Kind: KindFullReplaceWithTimestamp, Items: bets("a", "b", "c"), UpdatedAt: t0})

	s.RemoveTentative("b")
	snap := s.Snapshot()
	assert.True(t, snap.Tentative)
	assert.Equal(t, []string{"a", "c"}, ids(snap.Bets))

	// o servidor recusou a remoção: o snapshot autoritativo ainda tem "b"
	s.Apply(context.Background(), Notification{Kind: KindFullReplaceWithTimestamp, Items: bets("a", "b", "c"), UpdatedAt: t0.Add(time.Second)})
	snap = s.Snapshot()
	assert.False(t, snap.Tentative)
	assert.Equal(t, []string{"a", "b", "c"}, ids(snap.Bets))
}

func TestSynchronizer_StaleFetchDiscarded(t *testing.T) {
	s := newSync(&fakeSource{}, nil, nil)
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	s.Apply(context.Background(), Notification{Kind: KindFullReplaceWithTimestamp, Items: bets("new"), UpdatedAt: t0})
	s.applyFetchedBets(bets("old"), gen)

	assert.Equal(t, []string{"new"}, ids(s.Snapshot().Bets))
}

func TestSynchronizer_ViewIsPure(t *testing.T) {
	s := newSync(&fakeSource{}, nil, nil)
	items := []model.Bet{
		{ID: "1", Status: model.StatusWon, StakeValue: decimal.NewFromInt(100), Coef: decimal.NewFromInt(2), WinValue: decimal.NewFromInt(200), AddedDate: "15/03/2024"},
		{ID: "2", Status: model.StatusLost, StakeValue: decimal.NewFromInt(100), Coef: decimal.NewFromInt(2), AddedDate: "01/03/2024"},
	}
	s.Apply(context.Background(), Notification{Kind: KindFullReplaceWithTimestamp, Items: items, UpdatedAt: t0})

	day := s.View(window.Day, model.CurrencyUSDT, t0)
	assert.Equal(t, 1, day.Summary.Total)
	assert.Equal(t, 100, day.Summary.WinRate)

	month := s.View(window.Month, model.CurrencyUSDT, t0)
	assert.Equal(t, 2, month.Summary.Total)
	assert.Equal(t, 50, month.Summary.WinRate)
	assert.Equal(t, "0.0", month.Summary.ROI)
}

func TestSynchronizer_RestoreMarkerBeforeNetwork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marker.json")
	require.NoError(t, NewFileMarkerStore(path).Save(t0))

	s := newSync(&fakeSource{}, nil, NewFileMarkerStore(path))
	require.NoError(t, s.Restore())
	assert.True(t, s.Snapshot().Marker.Equal(t0))

	s.Apply(context.Background(), Notification{Kind: KindFullReplaceWithTimestamp, Items: bets("a"), UpdatedAt: t0.Add(time.Minute)})
	got, ok, err := NewFileMarkerStore(path).Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(t0.Add(time.Minute)))
}

func TestSynchronizer_RunSyncsAndReconnects(t *testing.T) {
	src := &fakeSource{bets: bets("a", "b"), marker: t0, rate: model.ExchangeRate{RubPerUsdt: 95}}
	tr := newChanTransport()
	tr.fail = 1

	var mu sync.Mutex
	var states []State
	s := New(zap.NewNop(), src, tr, nil, Options{
		RetryDelay: 5 * time.Millisecond,
		OnChange: func(snap Snapshot) {
			mu.Lock()
			if len(states) == 0 || states[len(states)-1] != snap.State {
				states = append(states, snap.State)
			}
			mu.Unlock()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.State == Synced && len(snap.Bets) == 2 && snap.Rate.RubPerUsdt == 95 && snap.Marker.Equal(t0)
	}, 2*time.Second, 5*time.Millisecond)

	tr.msgs <- []byte(`{"items":[{"id":"z"}],"updatedAt":"2024-03-15T13:00:00Z"}`)
	require.Eventually(t, func() bool { return len(s.Snapshot().Bets) == 1 }, time.Second, 5*time.Millisecond)

	tr.drop <- struct{}{}
	require.Eventually(t, func() bool { return tr.openCount() == 2 && s.Snapshot().State == Synced }, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, Disconnected, s.Snapshot().State)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, Connecting)
	assert.Contains(t, states, Synced)
	assert.Contains(t, states, Disconnected)
}

func TestSynchronizer_FetchErrorsKeepState(t *testing.T) {
	src := &fakeSource{err: errors.New("api down")}
	s := newSync(src, nil, nil)
	s.Apply(context.Background(), Notification{Kind: KindFullReplaceWithTimestamp, Items: bets("a"), UpdatedAt: t0})

	s.resync(context.Background())

	snap := s.Snapshot()
	assert.Equal(t, []string{"a"}, ids(snap.Bets))
	assert.Equal(t, model.DefaultRubPerUsdt, snap.Rate.RubPerUsdt)
}
