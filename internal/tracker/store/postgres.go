package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

// Postgres guarda a coleção posicional, os backups e o estado (marcador e cotação)
type Postgres struct{ db *sql.DB }

// NewPostgres retorna o store de apostas em Postgres
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Load lê a coleção na ordem salva e o marcador de última atualização
func (p *Postgres) Load(ctx context.Context) ([]model.Bet, time.Time, error) {
	const q = `
		SELECT id, match_title, bet_title, status, stake_value, stake_currency,
		       coef, win_value, win_currency, added_date, time_label
		FROM bets
		ORDER BY position;
	`
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query bets: %w", err)
	}
	defer rows.Close()

	out := []model.Bet{}
	for rows.Next() {
		var b model.Bet
		var status string
		if err := rows.Scan(&b.ID, &b.Match, &b.Bet, &status, &b.StakeValue, &b.StakeCurrency,
			&b.Coef, &b.WinValue, &b.WinCurrency, &b.AddedDate, &b.Time); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan bet: %w", err)
		}
		b.Status = model.Status(status)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}

	var updated sql.NullTime
	err = p.db.QueryRowContext(ctx, `SELECT last_updated FROM tracker_state WHERE id=1`).Scan(&updated)
	if err != nil && err != sql.ErrNoRows {
		return nil, time.Time{}, fmt.Errorf("query state: %w", err)
	}
	return out, updated.Time, nil
}

// SaveSnapshot substitui a coleção, grava um backup imutável e atualiza o marcador,
// tudo numa única transação
func (p *Postgres) SaveSnapshot(ctx context.Context, bets []model.Bet, at time.Time) error {
	snapshot, err := json.Marshal(bets)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM bets`); err != nil {
		return fmt.Errorf("clear bets: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bets (position, id, match_title, bet_title, status, stake_value, stake_currency,
		                  coef, win_value, win_currency, added_date, time_label)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, b := range bets {
		if _, err = stmt.ExecContext(ctx, i, b.ID, b.Match, b.Bet, string(b.Status), b.StakeValue, b.StakeCurrency,
			b.Coef, b.WinValue, b.WinCurrency, b.AddedDate, b.Time); err != nil {
			return fmt.Errorf("insert bet %s: %w", b.ID, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO bet_backups (taken_at, snapshot) VALUES ($1,$2)`, at, string(snapshot)); err != nil {
		return fmt.Errorf("insert backup: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO tracker_state (id, last_updated) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET last_updated = EXCLUDED.last_updated`, at); err != nil {
		return fmt.Errorf("update state: %w", err)
	}

	return tx.Commit()
}

// LoadRate retorna a cotação persistida; ok=false quando nunca foi gravada
func (p *Postgres) LoadRate(ctx context.Context) (model.ExchangeRate, bool, error) {
	var rate sql.NullFloat64
	var at sql.NullTime
	err := p.db.QueryRowContext(ctx, `SELECT rub_per_usdt, rate_updated_at FROM tracker_state WHERE id=1`).Scan(&rate, &at)
	if err == sql.ErrNoRows || (err == nil && !rate.Valid) {
		return model.ExchangeRate{}, false, nil
	}
	if err != nil {
		return model.ExchangeRate{}, false, fmt.Errorf("query rate: %w", err)
	}
	return model.ExchangeRate{RubPerUsdt: rate.Float64, UpdatedAt: at.Time}, true, nil
}

// SaveRate grava a cotação
func (p *Postgres) SaveRate(ctx context.Context, r model.ExchangeRate) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO tracker_state (id, rub_per_usdt, rate_updated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET rub_per_usdt = EXCLUDED.rub_per_usdt, rate_updated_at = EXCLUDED.rate_updated_at`,
		r.RubPerUsdt, r.UpdatedAt)
	return err
}

// Backups lista os snapshots mais recentes primeiro
func (p *Postgres) Backups(ctx context.Context, limit int) ([]Backup, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT taken_at, snapshot FROM bet_backups ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Backup
	for rows.Next() {
		var bk Backup
		var raw []byte
		if err := rows.Scan(&bk.TakenAt, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &bk.Items); err != nil {
			return nil, fmt.Errorf("decode backup: %w", err)
		}
		out = append(out, bk)
	}
	return out, rows.Err()
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }
