// Package importer normaliza documentos JSON de importação em massa.
// A importação é tudo-ou-nada: qualquer erro estrutural invalida o documento inteiro.
package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/money"
)

// ErrParse indica documento de importação malformado
var ErrParse = errors.New("malformed import document")

// Parse aceita um array de registros ou um objeto {items: [...]} / {bets: [...]}
func Parse(doc []byte) ([]model.Bet, error) {
	records, err := records(doc)
	if err != nil {
		return nil, err
	}

	out := make([]model.Bet, 0, len(records))
	for i, raw := range records {
		b, err := normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrParse, i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func records(doc []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var top any
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var list []any
	switch v := top.(type) {
	case []any:
		list = v
	case map[string]any:
		for _, key := range []string{"items", "bets"} {
			if arr, ok := v[key].([]any); ok {
				list = arr
				break
			}
		}
		if list == nil {
			return nil, fmt.Errorf("%w: object without items", ErrParse)
		}
	default:
		return nil, fmt.Errorf("%w: expected array of records", ErrParse)
	}

	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrParse, i)
		}
		out = append(out, m)
	}
	return out, nil
}

func normalize(m map[string]any) (model.Bet, error) {
	b := model.Bet{
		ID:        text(m, "id", "_id"),
		Match:     text(m, "match"),
		Bet:       text(m, "bet"),
		Status:    model.ParseStatus(text(m, "status")),
		AddedDate: text(m, "added_date", "addedDate"),
		Time:      text(m, "time"),
	}

	var err error
	var ok bool
	if b.StakeValue, _, err = number(m, "stake_value", "stakeValue", "stake"); err != nil {
		return b, err
	}
	if b.Coef, _, err = number(m, "coef", "odds"); err != nil {
		return b, err
	}
	if b.WinValue, ok, err = number(m, "win_value", "winValue", "win"); err != nil {
		return b, err
	}
	if !ok {
		b.WinValue = money.DerivedWinValue(b.Status, b.StakeValue, b.Coef)
	}

	b.StakeCurrency = strings.ToUpper(text(m, "stake_currency", "stakeCurrency", "currency"))
	if b.StakeCurrency == "" {
		b.StakeCurrency = model.CurrencyUSDT
	}
	b.WinCurrency = strings.ToUpper(text(m, "win_currency", "winCurrency"))
	if b.WinCurrency == "" {
		b.WinCurrency = b.StakeCurrency
	}
	return b, nil
}

func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func text(m map[string]any, keys ...string) string {
	v, ok := lookup(m, keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// number aceita número JSON ou string numérica (vírgula como separador decimal).
// String vazia conta como ausente.
func number(m map[string]any, keys ...string) (decimal.Decimal, bool, error) {
	v, ok := lookup(m, keys...)
	if !ok {
		return decimal.Zero, false, nil
	}
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		s = strings.ReplaceAll(s, " ", "")
		if s == "" {
			return decimal.Zero, false, nil
		}
	default:
		return decimal.Zero, false, fmt.Errorf("field %s: not a number", keys[0])
	}
	n, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("field %s: %v", keys[0], err)
	}
	return n, true, nil
}
