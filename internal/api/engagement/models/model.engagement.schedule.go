// Package engagementmodels - Schedule descriptor cho recurring delivery.
package engagementmodels

import (
	"time"

	"audience_hub/internal/common"

	"github.com/teambition/rrule-go"
)

// Periodicity của schedule
const (
	PeriodicityDaily   = "Daily"
	PeriodicityWeekly  = "Weekly"
	PeriodicityMonthly = "Monthly"
)

// Meridiem cho clock time
const (
	MeridiemAM = "AM"
	MeridiemPM = "PM"
)

// Ordinal qualifier cho day-of-month selector
const (
	OrdinalDay    = "Day" // Dùng số ngày literal trong MonthlyDay.Day
	OrdinalFirst  = "First"
	OrdinalSecond = "Second"
	OrdinalThird  = "Third"
	OrdinalFourth = "Fourth"
	OrdinalLast   = "Last"
)

// Symbolic day values cho Monthly selector
const (
	SymbolDay        = "Day"
	SymbolWeekend    = "Weekend"
	SymbolWeekendDay = "Weekend day"
	SymbolMonday     = "Monday"
	SymbolTuesday    = "Tuesday"
	SymbolWednesday  = "Wednesday"
	SymbolThursday   = "Thursday"
	SymbolFriday     = "Friday"
	SymbolSaturday   = "Saturday"
	SymbolSunday     = "Sunday"
)

// MonthlyDaySelector chọn ngày trong tháng cho schedule Monthly.
// Hoặc literal (Ordinal=Day + Day=số ngày), hoặc symbolic (Ordinal + Symbol).
type MonthlyDaySelector struct {
	Ordinal string `json:"ordinal" bson:"ordinal"`         // Day|First|Second|Third|Fourth|Last
	Symbol  string `json:"symbol,omitempty" bson:"symbol,omitempty"` // Day|Weekend|Weekend day|Monday..Sunday
	Day     int    `json:"day,omitempty" bson:"day,omitempty"`       // Số ngày literal (1..31) khi Ordinal=Day
}

// Schedule là recurrence descriptor gắn vào một delivery edge
type Schedule struct {
	Periodicity string              `json:"periodicity" bson:"periodicity"` // Daily|Weekly|Monthly
	Every       int                 `json:"every" bson:"every"`             // Lặp mỗi N chu kỳ
	Hour        int                 `json:"hour" bson:"hour"`               // 1..12
	Minute      int                 `json:"minute" bson:"minute"`           // 0..59
	Meridiem    string              `json:"meridiem" bson:"meridiem"`       // AM|PM
	MonthlyDay  *MonthlyDaySelector `json:"monthlyDay,omitempty" bson:"monthlyDay,omitempty"`
}

var validOrdinals = map[string]int{
	OrdinalFirst:  1,
	OrdinalSecond: 2,
	OrdinalThird:  3,
	OrdinalFourth: 4,
	OrdinalLast:   -1,
}

var weekdaySymbols = map[string]rrule.Weekday{
	SymbolMonday:    rrule.MO,
	SymbolTuesday:   rrule.TU,
	SymbolWednesday: rrule.WE,
	SymbolThursday:  rrule.TH,
	SymbolFriday:    rrule.FR,
	SymbolSaturday:  rrule.SA,
	SymbolSunday:    rrule.SU,
}

// Validate kiểm tra schedule descriptor có hợp lệ không
func (s *Schedule) Validate() error {
	switch s.Periodicity {
	case PeriodicityDaily, PeriodicityWeekly:
	case PeriodicityMonthly:
		if s.MonthlyDay == nil {
			return common.NewError(common.ErrCodeValidationInput,
				"Schedule Monthly cần day-of-month selector", common.StatusBadRequest, nil)
		}
		if err := s.MonthlyDay.validate(); err != nil {
			return err
		}
	default:
		return common.NewError(common.ErrCodeValidationInput,
			"Periodicity phải là Daily, Weekly hoặc Monthly", common.StatusBadRequest, s.Periodicity)
	}

	if s.Every < 1 {
		return common.NewError(common.ErrCodeValidationInput,
			"Every phải >= 1", common.StatusBadRequest, s.Every)
	}
	if s.Hour < 1 || s.Hour > 12 {
		return common.NewError(common.ErrCodeValidationInput,
			"Hour phải trong khoảng 1..12", common.StatusBadRequest, s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return common.NewError(common.ErrCodeValidationInput,
			"Minute phải trong khoảng 0..59", common.StatusBadRequest, s.Minute)
	}
	if s.Meridiem != MeridiemAM && s.Meridiem != MeridiemPM {
		return common.NewError(common.ErrCodeValidationInput,
			"Meridiem phải là AM hoặc PM", common.StatusBadRequest, s.Meridiem)
	}
	return nil
}

func (m *MonthlyDaySelector) validate() error {
	if m.Ordinal == OrdinalDay {
		if m.Day < 1 || m.Day > 31 {
			return common.NewError(common.ErrCodeValidationInput,
				"Day literal phải trong khoảng 1..31", common.StatusBadRequest, m.Day)
		}
		return nil
	}

	if _, ok := validOrdinals[m.Ordinal]; !ok {
		return common.NewError(common.ErrCodeValidationInput,
			"Ordinal không hợp lệ", common.StatusBadRequest, m.Ordinal)
	}

	switch m.Symbol {
	case SymbolDay, SymbolWeekend, SymbolWeekendDay:
		return nil
	default:
		if _, ok := weekdaySymbols[m.Symbol]; !ok {
			return common.NewError(common.ErrCodeValidationInput,
				"Symbol không hợp lệ", common.StatusBadRequest, m.Symbol)
		}
	}
	return nil
}

// Hour24 chuyển clock time 12h sang giờ 24h
func (s *Schedule) Hour24() int {
	hour := s.Hour % 12
	if s.Meridiem == MeridiemPM {
		hour += 12
	}
	return hour
}

// ToRRule chuyển schedule descriptor thành rrule để tính occurrence.
// dtstart là mốc bắt đầu của recurrence.
func (s *Schedule) ToRRule(dtstart time.Time) (*rrule.RRule, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	opts := rrule.ROption{
		Interval: s.Every,
		Dtstart:  dtstart,
		Byhour:   []int{s.Hour24()},
		Byminute: []int{s.Minute},
		Bysecond: []int{0},
	}

	switch s.Periodicity {
	case PeriodicityDaily:
		opts.Freq = rrule.DAILY
	case PeriodicityWeekly:
		opts.Freq = rrule.WEEKLY
	case PeriodicityMonthly:
		opts.Freq = rrule.MONTHLY
		applyMonthlySelector(&opts, s.MonthlyDay)
	}

	return rrule.NewRRule(opts)
}

// applyMonthlySelector ánh xạ day-of-month selector sang rrule options
func applyMonthlySelector(opts *rrule.ROption, m *MonthlyDaySelector) {
	if m.Ordinal == OrdinalDay {
		opts.Bymonthday = []int{m.Day}
		return
	}

	nth := validOrdinals[m.Ordinal]
	switch m.Symbol {
	case SymbolDay:
		// "First Day" = ngày thứ nth của tháng, Last = ngày cuối
		opts.Bymonthday = []int{nth}
	case SymbolWeekend, SymbolWeekendDay:
		// Ngày cuối tuần thứ nth trong tháng
		opts.Byweekday = []rrule.Weekday{rrule.SA, rrule.SU}
		opts.Bysetpos = []int{nth}
	default:
		wd := weekdaySymbols[m.Symbol]
		opts.Byweekday = []rrule.Weekday{wd.Nth(nth)}
	}
}

// NextOccurrence trả về occurrence kế tiếp sau mốc after.
// Trả về zero time nếu không còn occurrence nào.
func (s *Schedule) NextOccurrence(dtstart, after time.Time) (time.Time, error) {
	r, err := s.ToRRule(dtstart)
	if err != nil {
		return time.Time{}, err
	}
	return r.After(after, false), nil
}
