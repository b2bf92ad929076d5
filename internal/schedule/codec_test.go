package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseStandardSchedule(t *testing.T) {
	slots := Parse(strPtr("T2/T4 - 19:00"))
	require.Len(t, slots, 2)
	assert.Equal(t, Slot{DayCode: "T2", Time: "19:00"}, slots[0])
	assert.Equal(t, Slot{DayCode: "T4", Time: "19:00"}, slots[1])
}

func TestParseCommaSeparatedDays(t *testing.T) {
	slots := ParseString("T3, T5 ,CN-08:30")
	require.Len(t, slots, 3)
	assert.Equal(t, "T3", slots[0].DayCode)
	assert.Equal(t, "T5", slots[1].DayCode)
	assert.Equal(t, "CN", slots[2].DayCode)
	assert.Equal(t, "08:30", slots[2].Time)
}

func TestParseDegradesToEmpty(t *testing.T) {
	assert.Empty(t, Parse(nil))
	assert.Empty(t, ParseString(""))
	assert.Empty(t, ParseString("   "))
	assert.Empty(t, ParseString("garbage"))
	assert.Empty(t, ParseString("T2/T4 19:00"))
}

func TestParseSplitsOnFirstDashOnly(t *testing.T) {
	slots := ParseString("T7 - 18:00-19:30")
	require.Len(t, slots, 1)
	assert.Equal(t, "18:00-19:30", slots[0].Time)
}

func TestParseCarriesUnknownTokensVerbatim(t *testing.T) {
	slots := ParseString("Mon/T2 - 07:00")
	require.Len(t, slots, 2)
	assert.Equal(t, "Mon", slots[0].DayCode)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "T2/T4 - 19:00", Format([]string{"T2", "T4"}, "19:00"))
	assert.Equal(t, "T2/T4", Format([]string{"T2", "T4"}, ""))
	assert.Equal(t, " - 19:00", Format(nil, "19:00"))
	assert.Equal(t, "", Format(nil, ""))
}

func TestRoundTripNormalisesDayOrder(t *testing.T) {
	for _, raw := range []string{"T2/T4 - 19:00", "T6/T3 - 07:15", "CN,T2 - 20:00"} {
		slots := ParseString(raw)
		days := make([]string, 0, len(slots))
		for _, s := range slots {
			days = append(days, s.DayCode)
		}
		SortDays(days)
		formatted := Format(days, slots[0].Time)
		normalised, ok := Normalize(raw)
		require.True(t, ok)
		assert.Equal(t, normalised, formatted)
		assert.Equal(t, slots[0].Time, ParseString(formatted)[0].Time)
	}
	normalised, _ := Normalize("CN,T2 - 20:00")
	assert.Equal(t, "T2/CN - 20:00", normalised)
}

func TestNormalizeKeepsUnparsableInput(t *testing.T) {
	out, ok := Normalize("every weekday evening")
	assert.False(t, ok)
	assert.Equal(t, "every weekday evening", out)
}

func TestNormalizeDropsDuplicateDays(t *testing.T) {
	out, ok := Normalize("T4/T2/T4 - 09:00")
	require.True(t, ok)
	assert.Equal(t, "T2/T4 - 09:00", out)
}

func TestToggleDayUsesCanonicalOrder(t *testing.T) {
	selected := ToggleDay(nil, "CN")
	selected = ToggleDay(selected, "T5")
	selected = ToggleDay(selected, "T2")
	assert.Equal(t, []string{"T2", "T5", "CN"}, selected)

	selected = ToggleDay(selected, "T5")
	assert.Equal(t, []string{"T2", "CN"}, selected)
}

func TestIsDayCode(t *testing.T) {
	assert.True(t, IsDayCode("T7"))
	assert.True(t, IsDayCode("CN"))
	assert.False(t, IsDayCode("T1"))
	assert.False(t, IsDayCode(""))
}

func TestNormalizeDropsEmptyDayTokens(t *testing.T) {
	out, ok := Normalize("T2// - 19:00")
	require.True(t, ok)
	assert.Equal(t, "T2 - 19:00", out)

	out, ok = Normalize(", T4 ,/T2 - 08:00")
	require.True(t, ok)
	assert.Equal(t, "T2/T4 - 08:00", out)

	out, ok = Normalize("// - 19:00")
	assert.False(t, ok)
	assert.Equal(t, "// - 19:00", out)
}
