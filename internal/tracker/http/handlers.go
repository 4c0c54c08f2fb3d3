package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/betslip-tracker/internal/tracker/importer"
	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/service"
	"github.com/radieske/betslip-tracker/internal/tracker/window"
)

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mapeia erros de domínio para status HTTP
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, importer.ErrParse):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		a.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", service.ErrInvalidArgument, err)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalid(err)
	}
	return nil
}

func (a *API) listBets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.List())
}

func (a *API) lastUpdated(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, lastUpdatedResponse{UpdatedAt: a.svc.LastUpdated()})
}

func (a *API) authCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *API) addBet(w http.ResponseWriter, r *http.Request) {
	var b model.Bet
	if err := decode(r, &b); err != nil {
		a.writeError(w, r, err)
		return
	}
	created, err := a.svc.Add(r.Context(), b)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) replaceBets(w http.ResponseWriter, r *http.Request) {
	var bets []model.Bet
	if err := decode(r, &bets); err != nil {
		a.writeError(w, r, err)
		return
	}
	out, err := a.svc.Replace(r.Context(), bets)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: out, UpdatedAt: a.svc.LastUpdated()})
}

func (a *API) patchBet(w http.ResponseWriter, r *http.Request) {
	var p model.BetPatch
	if err := decode(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	updated, err := a.svc.Patch(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteBet(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) quickStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.writeError(w, r, invalid(err))
		return
	}
	updated, err := a.svc.QuickStatus(r.Context(), chi.URLParam(r, "id"), model.Status(strings.ToUpper(strings.TrimSpace(req.Status))))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) importBets(w http.ResponseWriter, r *http.Request) {
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		a.writeError(w, r, invalid(err))
		return
	}
	out, err := a.svc.Import(r.Context(), doc, service.ImportMode(r.URL.Query().Get("mode")))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: out, UpdatedAt: a.svc.LastUpdated()})
}

func (a *API) getRate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.Rate())
}

func (a *API) setRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.writeError(w, r, invalid(err))
		return
	}
	rate, err := a.svc.SetRate(r.Context(), *req.RubPerUsdt)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

func (a *API) getStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("period")
	if raw == "" {
		raw = string(window.Day)
	}
	period, err := window.ParsePeriod(raw)
	if err != nil {
		a.writeError(w, r, invalid(err))
		return
	}
	writeJSON(w, http.StatusOK, a.svc.Summary(period, q.Get("currency"), a.opts.Now()))
}

func (a *API) listBackups(w http.ResponseWriter, r *http.Request) {
	if a.opts.Backups == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "backups not available"})
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			a.writeError(w, r, invalid(errors.New("limit must be 1..500")))
			return
		}
		limit = n
	}
	backups, err := a.opts.Backups.Backups(r.Context(), limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backups)
}
