package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/internal/tracker/money"
)

func TestParse_DerivesWinValue(t *testing.T) {
	bets, err := Parse([]byte(`[{"status":"Выиграна","stake_value":10,"coef":3}]`))
	require.NoError(t, err)
	require.Len(t, bets, 1)

	b := bets[0]
	assert.Equal(t, model.StatusWon, b.Status)
	assert.True(t, b.WinValue.Equal(decimal.NewFromInt(30)))
	assert.True(t, money.NormalizedResult(b).Equal(decimal.NewFromInt(20)))
	assert.Equal(t, model.CurrencyUSDT, b.StakeCurrency)
	assert.Equal(t, model.CurrencyUSDT, b.WinCurrency)
}

func TestParse_ToleratesLegacyShapes(t *testing.T) {
	doc := `{"items":[
		{"id":7,"status":"Проиграна","stake_value":"1 500,50","stake_currency":"rub","coef":"1,9"},
		{"id":"x","status":"whatever","stake_value":"","coef":2,"win_value":-4}
	]}`
	bets, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, bets, 2)

	assert.Equal(t, "7", bets[0].ID)
	assert.Equal(t, model.StatusLost, bets[0].Status)
	assert.True(t, bets[0].StakeValue.Equal(decimal.RequireFromString("1500.50")))
	assert.Equal(t, model.CurrencyRUB, bets[0].StakeCurrency)
	assert.Equal(t, model.CurrencyRUB, bets[0].WinCurrency)
	assert.True(t, bets[0].WinValue.IsZero())

	assert.Equal(t, model.StatusPending, bets[1].Status)
	assert.True(t, bets[1].StakeValue.IsZero())
	assert.True(t, bets[1].WinValue.Equal(decimal.NewFromInt(-4)))
}

func TestParse_Failures(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":          `[{"status":`,
		"scalar":            `42`,
		"object no items":   `{"foo":[]}`,
		"record not object": `[{"status":"WON"}, 3]`,
		"bad number":        `[{"status":"WON","stake_value":"ten"}]`,
		"bool number":       `[{"status":"WON","coef":true}]`,
	} {
		t.Run(name, func(t *testing.T) {
			bets, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrParse)
			assert.Nil(t, bets)
		})
	}
}
