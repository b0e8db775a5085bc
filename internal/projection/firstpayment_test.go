package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFirstPaymentDate_BeforeClosing(t *testing.T) {
	// Purchase lands inside the cycle ending at the closing date.
	got := FirstPaymentDate(day("2024-03-10"), day("2024-03-15"), day("2024-03-25"))
	assert.Equal(t, day("2024-03-25"), got)
}

func TestFirstPaymentDate_OnOrAfterClosing(t *testing.T) {
	// Purchase lands in the next cycle: first day of the month after expiring.
	got := FirstPaymentDate(day("2024-03-20"), day("2024-03-15"), day("2024-03-25"))
	assert.Equal(t, day("2024-04-01"), got)

	// Exactly on the closing date counts as the next cycle.
	got = FirstPaymentDate(day("2024-03-15"), day("2024-03-15"), day("2024-03-25"))
	assert.Equal(t, day("2024-04-01"), got)
}

func TestFirstPaymentDate_FarFutureGuard(t *testing.T) {
	// 74 days from closing: fall back to the month after acquisition.
	got := FirstPaymentDate(day("2024-01-01"), day("2024-03-15"), day("2024-03-25"))
	assert.Equal(t, day("2024-02-01"), got)

	// Guard ignores the sign of the difference.
	got = FirstPaymentDate(day("2024-06-01"), day("2024-03-15"), day("2024-03-25"))
	assert.Equal(t, day("2024-07-01"), got)
}

func TestFirstPaymentDate_GuardBoundary(t *testing.T) {
	// Exactly 35 days away is still inside the trusted window.
	got := FirstPaymentDate(day("2024-03-01"), day("2024-04-05"), day("2024-04-15"))
	assert.Equal(t, day("2024-04-15"), got)

	// 36 days trips the guard.
	got = FirstPaymentDate(day("2024-03-01"), day("2024-04-06"), day("2024-04-15"))
	assert.Equal(t, day("2024-04-01"), got)
}

func TestFirstPaymentDate_YearRollover(t *testing.T) {
	got := FirstPaymentDate(day("2024-12-20"), day("2024-12-15"), day("2024-12-26"))
	assert.Equal(t, day("2025-01-01"), got)
}

func TestFirstPaymentDate_MissingInput(t *testing.T) {
	var zero time.Time
	assert.True(t, FirstPaymentDate(zero, day("2024-03-15"), day("2024-03-25")).IsZero())
	assert.True(t, FirstPaymentDate(day("2024-03-10"), zero, day("2024-03-25")).IsZero())
	assert.True(t, FirstPaymentDate(day("2024-03-10"), day("2024-03-15"), zero).IsZero())
}

func TestFirstPaymentDay_Strings(t *testing.T) {
	assert.Equal(t, "2024-03-25", FirstPaymentDay("2024-03-10", "2024-03-15", "2024-03-25"))
	assert.Equal(t, "", FirstPaymentDay("", "2024-03-15", "2024-03-25"))
	assert.Equal(t, "", FirstPaymentDay("not-a-date", "2024-03-15", "2024-03-25"))

	// Time components on the wire are tolerated.
	assert.Equal(t, "2024-03-25", FirstPaymentDay("2024-03-10T00:00:00", "2024-03-15", "2024-03-25"))
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, day("2024-03-10"), got)

	got, err = ParseDay("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseDay("10-03-2024")
	assert.Error(t, err)
}

func TestPreviousMonth(t *testing.T) {
	m, y := PreviousMonth(1, 2024)
	assert.Equal(t, 12, m)
	assert.Equal(t, 2023, y)

	m, y = PreviousMonth(7, 2024)
	assert.Equal(t, 6, m)
	assert.Equal(t, 2024, y)
}
