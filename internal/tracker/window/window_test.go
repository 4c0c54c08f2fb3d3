package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

func bet(id, added string) model.Bet {
	return model.Bet{ID: id, AddedDate: added, Status: model.StatusWon}
}

func ids(bets []model.Bet) []string {
	out := make([]string, 0, len(bets))
	for _, b := range bets {
		out = append(out, b.ID)
	}
	return out
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("29/02/2024", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParseDate("5/3/2024", time.UTC)
	assert.True(t, ok)

	for _, raw := range []string{"31/02/2024", "29/02/2023", "31/04/2024", "00/01/2024", "12/13/2024", "2024-01-01", "", "aa/bb/cccc", "01/01/24",
		"+5/03/2024", "05/+3/2024", "005/03/2024", "05/003/2024", "05/03/+2024", "05/03/02024", "05/ 3/2024", "-1/03/2024"} {
		_, ok := ParseDate(raw, time.UTC)
		assert.False(t, ok, raw)
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" WEEK ")
	require.NoError(t, err)
	assert.Equal(t, Week, p)

	_, err = ParsePeriod("year")
	assert.Error(t, err)
}

func TestFilter_Day(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	bets := []model.Bet{bet("a", "15/03/2024"), bet("b", "14/03/2024"), bet("c", "15/3/2024")}

	// DAY é comparação exata de string
	assert.Equal(t, []string{"a"}, ids(Filter(bets, Day, now)))
}

func TestFilter_Week(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 30, 0, 0, time.UTC)
	bets := []model.Bet{
		bet("today", "15/03/2024"),
		bet("six-days-ago", "09/03/2024"),
		bet("seven-days-ago", "08/03/2024"),
		bet("tomorrow", "16/03/2024"),
		bet("broken", "31/02/2024"),
	}
	assert.Equal(t, []string{"today", "six-days-ago"}, ids(Filter(bets, Week, now)))
}

func TestFilter_Month(t *testing.T) {
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)
	bets := []model.Bet{
		bet("first", "01/02/2024"),
		bet("last", "29/02/2024"),
		bet("prev", "31/01/2024"),
		bet("next", "01/03/2024"),
		bet("invalid", "31/02/2024"),
		bet("garbage", "soon"),
	}
	assert.Equal(t, []string{"first", "last"}, ids(Filter(bets, Month, now)))
}

func TestFilter_DayWithinWeekWithinMonth(t *testing.T) {
	now := time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)
	var bets []model.Bet
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		bets = append(bets, bet(model.FormatDate(start.AddDate(0, 0, i)), model.FormatDate(start.AddDate(0, 0, i))))
	}

	week := map[string]bool{}
	for _, b := range Filter(bets, Week, now) {
		week[b.ID] = true
	}
	month := map[string]bool{}
	for _, b := range Filter(bets, Month, now) {
		month[b.ID] = true
	}
	day := Filter(bets, Day, now)
	require.Len(t, day, 1)
	for _, b := range day {
		assert.True(t, week[b.ID])
		assert.True(t, month[b.ID])
	}
	assert.Len(t, week, 7)
	assert.Len(t, month, 30)
}

func TestFilter_PreservesOrder(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	bets := []model.Bet{bet("3", "14/03/2024"), bet("1", "10/03/2024"), bet("2", "15/03/2024")}
	assert.Equal(t, []string{"3", "1", "2"}, ids(Filter(bets, Week, now)))
}
