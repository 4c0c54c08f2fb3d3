// Package httpapi expõe a coleção de apostas, a cotação e o canal WebSocket via REST.
package httpapi

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/service"
	"github.com/radieske/betslip-tracker/internal/tracker/stats"
	"github.com/radieske/betslip-tracker/internal/tracker/store"
	"github.com/radieske/betslip-tracker/internal/tracker/window"
)

// AdminHeader carrega o segredo compartilhado das rotas de escrita
const AdminHeader = "X-Admin-Password"

const maxImportBytes = 5 << 20

// Tracker é o que a API precisa do service
type Tracker interface {
	List() []model.Bet
	LastUpdated() time.Time
	Rate() model.ExchangeRate
	Add(ctx context.Context, b model.Bet) (model.Bet, error)
	Patch(ctx context.Context, id string, p model.BetPatch) (model.Bet, error)
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, bets []model.Bet) ([]model.Bet, error)
	QuickStatus(ctx context.Context, id string, status model.Status) (model.Bet, error)
	Import(ctx context.Context, doc []byte, mode service.ImportMode) ([]model.Bet, error)
	SetRate(ctx context.Context, rubPerUsdt float64) (model.ExchangeRate, error)
	Summary(period window.Period, currency string, now time.Time) stats.Dashboard
}

// BackupLister lista os snapshots de backup (opcional)
type BackupLister interface {
	Backups(ctx context.Context, limit int) ([]store.Backup, error)
}

// Options agrupa a configuração da API
type Options struct {
	AdminPassword string
	CORSOrigins   []string
	StaticDir     string
	WS            http.Handler
	Backups       BackupLister
	Now           func() time.Time
}

// API registra as rotas REST sobre o Tracker
type API struct {
	log      *zap.Logger
	svc      Tracker
	opts     Options
	validate *validator.Validate
}

func New(log *zap.Logger, svc Tracker, opts Options) *API {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &API{log: log, svc: svc, opts: opts, validate: validator.New()}
}

// Router retorna o roteador HTTP com middlewares, rotas REST, /ws e estáticos
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(a.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", AdminHeader},
		MaxAge:         300,
	}))

	// /ws fica fora do Timeout: a conexão é longa
	if a.opts.WS != nil {
		r.Get("/ws", a.opts.WS.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))

		r.Get("/bets", a.listBets)
		r.Get("/last-updated", a.lastUpdated)
		r.Get("/rate", a.getRate)
		r.Get("/stats", a.getStats)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(a.opts.AdminPassword))

			r.Post("/auth/check", a.authCheck)
			r.Put("/bets", a.replaceBets)
			r.Post("/bets", a.addBet)
			r.Post("/bets/import", a.importBets)
			r.Patch("/bets/{id}", a.patchBet)
			r.Delete("/bets/{id}", a.deleteBet)
			r.Post("/bets/{id}/status", a.quickStatus)
			r.Put("/rate", a.setRate)
			r.Get("/backups", a.listBackups)
		})
	})

	if dir := a.opts.StaticDir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			r.Handle("/*", http.FileServer(http.Dir(dir)))
		} else {
			a.log.Warn("static dir not available", zap.String("dir", dir), zap.Error(err))
		}
	}

	return r
}
