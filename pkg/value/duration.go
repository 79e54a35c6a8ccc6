package value

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

var durationUnits = []struct {
	suffix string
	unit   time.Duration
}{
	{"w", week},
	{"d", day},
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
}

// Duration parses device durations: 1w2d3h4m5s, 500ms, 00:05:00, 1d00:05:00
// and bare seconds. It encodes the compact unit form, 0s for zero.
func Duration() Codec[time.Duration] {
	return New(parseDuration, encodeDuration)
}

func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return addScaled(0, n, time.Second)
	}
	if strings.Contains(s, ":") {
		return parseClock(s)
	}

	var total time.Duration
	rest := s
	for rest != "" {
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 {
			return 0, errors.New("expected a number")
		}
		n, err := strconv.ParseUint(rest[:i], 10, 32)
		if err != nil {
			return 0, err
		}
		rest = rest[i:]
		j := 0
		for j < len(rest) && (rest[j] < '0' || rest[j] > '9') {
			j++
		}
		unit, ok := lookupDurationUnit(rest[:j])
		if !ok {
			return 0, errors.New("unknown unit " + strconv.Quote(rest[:j]))
		}
		if total, err = addScaled(total, n, unit); err != nil {
			return 0, err
		}
		rest = rest[j:]
	}
	return total, nil
}

func lookupDurationUnit(suffix string) (time.Duration, bool) {
	for _, u := range durationUnits {
		if u.suffix == suffix {
			return u.unit, true
		}
	}
	return 0, false
}

// parseClock handles [Nd]hh:mm:ss.
func parseClock(s string) (time.Duration, error) {
	var total time.Duration
	if days, clock, ok := strings.Cut(s, "d"); ok {
		n, err := strconv.ParseUint(days, 10, 32)
		if err != nil {
			return 0, err
		}
		if total, err = addScaled(0, n, day); err != nil {
			return 0, err
		}
		s = clock
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, errors.New("expected hh:mm:ss")
	}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return 0, err
		}
		if total, err = addScaled(total, n, units[i]); err != nil {
			return 0, err
		}
	}
	return total, nil
}

var errDurationRange = errors.New("duration out of range")

// addScaled returns total + n*unit, failing instead of wrapping.
func addScaled(total time.Duration, n uint64, unit time.Duration) (time.Duration, error) {
	if n > uint64(math.MaxInt64/unit) {
		return 0, errDurationRange
	}
	step := time.Duration(n) * unit
	if total > math.MaxInt64-step {
		return 0, errDurationRange
	}
	return total + step, nil
}

func encodeDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	var b strings.Builder
	for _, u := range durationUnits {
		if d < u.unit {
			continue
		}
		n := d / u.unit
		d -= n * u.unit
		b.WriteString(strconv.FormatInt(int64(n), 10))
		b.WriteString(u.suffix)
	}
	return b.String()
}
