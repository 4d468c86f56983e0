package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", d.String())
	assert.True(t, d.Equal(NewDate(2024, time.January, 31)))

	_, err = ParseDate("31/01/2024")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	d := DateOf(time.Date(2024, 3, 1, 23, 30, 0, 0, ist))
	assert.Equal(t, "2024-03-01", d.String())
}

func TestDate_Ordering(t *testing.T) {
	a := MustParseDate("2024-01-01")
	b := MustParseDate("2024-01-02")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.True(t, a.SameMonth(b))
	assert.False(t, a.SameMonth(MustParseDate("2024-02-01")))
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-05-06"}`), &payload))
	assert.Equal(t, "2024-05-06", payload.Date.String())

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-05-06"}`, string(b))

	require.NoError(t, json.Unmarshal([]byte(`{"date":""}`), &payload))
	assert.True(t, payload.Date.IsZero())
}
