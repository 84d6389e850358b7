package engagementmodels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSchedule_Validate kiểm tra validation của schedule descriptor
func TestSchedule_Validate(t *testing.T) {
	cases := []struct {
		name     string
		schedule Schedule
		wantErr  bool
	}{
		{"daily hợp lệ", Schedule{Periodicity: PeriodicityDaily, Every: 2, Hour: 11, Minute: 15, Meridiem: MeridiemPM}, false},
		{"weekly hợp lệ", Schedule{Periodicity: PeriodicityWeekly, Every: 1, Hour: 9, Minute: 0, Meridiem: MeridiemAM}, false},
		{"monthly literal", Schedule{Periodicity: PeriodicityMonthly, Every: 1, Hour: 8, Minute: 30, Meridiem: MeridiemAM,
			MonthlyDay: &MonthlyDaySelector{Ordinal: OrdinalDay, Day: 15}}, false},
		{"monthly symbolic", Schedule{Periodicity: PeriodicityMonthly, Every: 1, Hour: 8, Minute: 30, Meridiem: MeridiemAM,
			MonthlyDay: &MonthlyDaySelector{Ordinal: OrdinalLast, Symbol: SymbolFriday}}, false},
		{"monthly thiếu selector", Schedule{Periodicity: PeriodicityMonthly, Every: 1, Hour: 8, Minute: 0, Meridiem: MeridiemAM}, true},
		{"periodicity lạ", Schedule{Periodicity: "Hourly", Every: 1, Hour: 8, Minute: 0, Meridiem: MeridiemAM}, true},
		{"every = 0", Schedule{Periodicity: PeriodicityDaily, Every: 0, Hour: 8, Minute: 0, Meridiem: MeridiemAM}, true},
		{"hour 13", Schedule{Periodicity: PeriodicityDaily, Every: 1, Hour: 13, Minute: 0, Meridiem: MeridiemAM}, true},
		{"minute 60", Schedule{Periodicity: PeriodicityDaily, Every: 1, Hour: 8, Minute: 60, Meridiem: MeridiemAM}, true},
		{"meridiem lạ", Schedule{Periodicity: PeriodicityDaily, Every: 1, Hour: 8, Minute: 0, Meridiem: "XM"}, true},
		{"day literal 32", Schedule{Periodicity: PeriodicityMonthly, Every: 1, Hour: 8, Minute: 0, Meridiem: MeridiemAM,
			MonthlyDay: &MonthlyDaySelector{Ordinal: OrdinalDay, Day: 32}}, true},
		{"symbol lạ", Schedule{Periodicity: PeriodicityMonthly, Every: 1, Hour: 8, Minute: 0, Meridiem: MeridiemAM,
			MonthlyDay: &MonthlyDaySelector{Ordinal: OrdinalFirst, Symbol: "Holiday"}}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.schedule.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestSchedule_Hour24 kiểm tra chuyển đổi clock time 12h sang 24h
func TestSchedule_Hour24(t *testing.T) {
	cases := []struct {
		hour     int
		meridiem string
		want     int
	}{
		{12, MeridiemAM, 0},
		{1, MeridiemAM, 1},
		{11, MeridiemAM, 11},
		{12, MeridiemPM, 12},
		{1, MeridiemPM, 13},
		{11, MeridiemPM, 23},
	}

	for _, tc := range cases {
		s := Schedule{Hour: tc.hour, Meridiem: tc.meridiem}
		assert.Equal(t, tc.want, s.Hour24(), "Hour24(%d %s)", tc.hour, tc.meridiem)
	}
}

// TestSchedule_NextOccurrence_Daily kiểm tra recurrence Daily every=2 lúc 11:15 PM
func TestSchedule_NextOccurrence_Daily(t *testing.T) {
	s := Schedule{Periodicity: PeriodicityDaily, Every: 2, Hour: 11, Minute: 15, Meridiem: MeridiemPM}

	dtstart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	next, err := s.NextOccurrence(dtstart, after)
	require.NoError(t, err)

	assert.Equal(t, 23, next.Hour())
	assert.Equal(t, 15, next.Minute())
	assert.Equal(t, 1, next.Day())

	// Occurrence tiếp theo phải cách 2 ngày
	second, err := s.NextOccurrence(dtstart, next)
	require.NoError(t, err)
	assert.Equal(t, next.AddDate(0, 0, 2), second)
}

// TestSchedule_NextOccurrence_MonthlyLiteral kiểm tra selector literal ngày 15
func TestSchedule_NextOccurrence_MonthlyLiteral(t *testing.T) {
	s := Schedule{
		Periodicity: PeriodicityMonthly, Every: 1, Hour: 9, Minute: 0, Meridiem: MeridiemAM,
		MonthlyDay: &MonthlyDaySelector{Ordinal: OrdinalDay, Day: 15},
	}

	dtstart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next, err := s.NextOccurrence(dtstart, dtstart)
	require.NoError(t, err)

	assert.Equal(t, 15, next.Day())
	assert.Equal(t, time.January, next.Month())
	assert.Equal(t, 9, next.Hour())
}

// TestSchedule_NextOccurrence_MonthlySymbolic kiểm tra selector "Last Friday"
func TestSchedule_NextOccurrence_MonthlySymbolic(t *testing.T) {
	s := Schedule{
		Periodicity: PeriodicityMonthly, Every: 1, Hour: 9, Minute: 0, Meridiem: MeridiemAM,
		MonthlyDay: &MonthlyDaySelector{Ordinal: OrdinalLast, Symbol: SymbolFriday},
	}

	dtstart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next, err := s.NextOccurrence(dtstart, dtstart)
	require.NoError(t, err)

	// Last Friday của tháng 1/2026 là ngày 30
	assert.Equal(t, time.Friday, next.Weekday())
	assert.Equal(t, 30, next.Day())
	assert.Equal(t, time.January, next.Month())
}

// TestSchedule_NextOccurrence_SecondTuesday kiểm tra selector weekday với ordinal giữa tháng
func TestSchedule_NextOccurrence_SecondTuesday(t *testing.T) {
	s := Schedule{
		Periodicity: PeriodicityMonthly, Every: 1, Hour: 7, Minute: 45, Meridiem: MeridiemAM,
		MonthlyDay: &MonthlyDaySelector{Ordinal: OrdinalSecond, Symbol: SymbolTuesday},
	}

	dtstart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	next, err := s.NextOccurrence(dtstart, dtstart)
	require.NoError(t, err)

	// Thứ Ba thứ hai của tháng 3/2026 là ngày 10
	assert.Equal(t, time.Tuesday, next.Weekday())
	assert.Equal(t, 10, next.Day())
	assert.Equal(t, time.March, next.Month())
	assert.Equal(t, 7, next.Hour())
	assert.Equal(t, 45, next.Minute())
}

// TestSchedule_NextOccurrence_FirstWeekend kiểm tra selector "First Weekend"
func TestSchedule_NextOccurrence_FirstWeekend(t *testing.T) {
	s := Schedule{
		Periodicity: PeriodicityMonthly, Every: 1, Hour: 8, Minute: 0, Meridiem: MeridiemAM,
		MonthlyDay: &MonthlyDaySelector{Ordinal: OrdinalFirst, Symbol: SymbolWeekend},
	}

	dtstart := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	next, err := s.NextOccurrence(dtstart, dtstart)
	require.NoError(t, err)

	// Ngày cuối tuần đầu tiên của tháng 2/2026: Chủ nhật ngày 1
	assert.Contains(t, []time.Weekday{time.Saturday, time.Sunday}, next.Weekday())
	assert.Equal(t, time.February, next.Month())
	assert.Equal(t, 1, next.Day())
}
