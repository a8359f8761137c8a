package model

import (
	"fmt"
	"strings"
)

// Weekday identifies one of the seven fixed days of the planning week.
// Monday is the first day.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of DayState records in a week.
const DaysPerWeek = 7

// Weekdays lists the days in planning order.
var Weekdays = [DaysPerWeek]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// String returns the capitalised English day name.
func (d Weekday) String() string {
	switch d {
	case Monday:
		return "Monday"
	case Tuesday:
		return "Tuesday"
	case Wednesday:
		return "Wednesday"
	case Thursday:
		return "Thursday"
	case Friday:
		return "Friday"
	case Saturday:
		return "Saturday"
	case Sunday:
		return "Sunday"
	default:
		return "unknown"
	}
}

// Valid reports whether d is one of the seven known days.
func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

// ParseWeekday accepts full or three letter day names, case-insensitive.
func ParseWeekday(s string) (Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, d := range Weekdays {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// MarshalText encodes the day by name.
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText accepts anything ParseWeekday does.
func (d *Weekday) UnmarshalText(b []byte) error {
	v, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
