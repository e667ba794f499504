package attendance

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day in the organization's timezone.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock parses "HH:mm" or "HH:mm:ss".
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return Clock{}, fmt.Errorf("invalid clock %q: want HH:mm or HH:mm:ss", s)
}

func (c Clock) String() string {
	if c.Second == 0 {
		return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

func (c Clock) seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// Policy holds the organization's work-time rules. AutoCheckoutAt is the
// checkout time stamped on sessions left open; AutoCheckoutRunAt is when the
// daily job starts closing them.
type Policy struct {
	Location          *time.Location
	LunchMinutes      int
	LateCutoff        Clock
	StandardMinutes   int
	AutoCheckoutAt    Clock
	AutoCheckoutRunAt Clock
}

const (
	DefaultLunchMinutes    = 60
	DefaultStandardMinutes = 480
	DefaultTimezone        = "Asia/Seoul"
)

// DefaultPolicy is the 09:00 start, 8 hour day, 60 minute lunch policy in KST.
func DefaultPolicy() Policy {
	return Policy{
		Location:          KST(),
		LunchMinutes:      DefaultLunchMinutes,
		LateCutoff:        Clock{Hour: 9},
		StandardMinutes:   DefaultStandardMinutes,
		AutoCheckoutAt:    Clock{Hour: 18},
		AutoCheckoutRunAt: Clock{Hour: 23},
	}
}

// KST returns Asia/Seoul, or a fixed +09:00 zone when tzdata is unavailable.
func KST() *time.Location {
	return LoadLocation(DefaultTimezone)
}

// LoadLocation loads a named zone. Asia/Seoul falls back to a fixed +09:00 zone.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	if name == DefaultTimezone {
		return time.FixedZone("KST", 9*60*60)
	}
	return nil
}

func (p Policy) loc() *time.Location {
	if p.Location == nil {
		return KST()
	}
	return p.Location
}

// Local converts t to the organization's timezone.
func (p Policy) Local(t time.Time) time.Time {
	return t.In(p.loc())
}

// WorkDate returns the calendar date of t in the organization's timezone,
// as midnight UTC.
func (p Policy) WorkDate(t time.Time) time.Time {
	l := p.Local(t)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// At returns the instant of clock c on workDate in the organization's timezone.
func (p Policy) At(workDate time.Time, c Clock) time.Time {
	return time.Date(workDate.Year(), workDate.Month(), workDate.Day(), c.Hour, c.Minute, c.Second, 0, p.loc())
}

// AutoCheckoutDue reports whether the local time of day of t has reached
// AutoCheckoutRunAt.
func (p Policy) AutoCheckoutDue(t time.Time) bool {
	l := p.Local(t)
	now := Clock{Hour: l.Hour(), Minute: l.Minute(), Second: l.Second()}
	return now.seconds() >= p.AutoCheckoutRunAt.seconds()
}

// ParseAt parses "HH:mm[:ss]" on workDate.
func (p Policy) ParseAt(workDate time.Time, clock string) (time.Time, error) {
	c, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return p.At(workDate, c), nil
}

// Validate reports an error for values that would make the calculator meaningless.
func (p Policy) Validate() error {
	if p.LunchMinutes < 0 {
		return fmt.Errorf("lunch minutes must not be negative")
	}
	if p.StandardMinutes <= 0 {
		return fmt.Errorf("standard minutes must be positive")
	}
	for name, c := range map[string]Clock{
		"late cutoff":       p.LateCutoff,
		"auto checkout":     p.AutoCheckoutAt,
		"auto checkout run": p.AutoCheckoutRunAt,
	} {
		if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 || c.Second < 0 || c.Second > 59 {
			return fmt.Errorf("%s %s is out of range", name, c)
		}
	}
	return nil
}
