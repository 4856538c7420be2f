package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teranos/tact/errors"
)

// everyPattern matches "every <N> <unit>" with an optional plural suffix.
var everyPattern = regexp.MustCompile(`^every\s+(\d+)\s+(minute|hour|day)s?$`)

// ParseInterval turns a schedule descriptor into a repeat interval.
//
// Recognized forms:
//
//	"daily"            24 hours
//	"weekly"           7 days
//	"hourly"           1 hour
//	"every N minutes"  N minutes (also hour/hours, day/days)
//
// Matching is case-insensitive and tolerant of surrounding whitespace.
// Anything else returns ErrUnparsableSchedule. There is no default
// interval; an unrecognized descriptor never silently becomes one.
func ParseInterval(descriptor string) (time.Duration, error) {
	normalized := strings.ToLower(strings.TrimSpace(descriptor))

	switch normalized {
	case "daily":
		return 24 * time.Hour, nil
	case "weekly":
		return 7 * 24 * time.Hour, nil
	case "hourly":
		return time.Hour, nil
	}

	if m := everyPattern.FindStringSubmatch(normalized); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return 0, errors.Wrapf(errors.ErrUnparsableSchedule, "bad count in %q", descriptor)
		}
		switch m[2] {
		case "minute":
			return time.Duration(n) * time.Minute, nil
		case "hour":
			return time.Duration(n) * time.Hour, nil
		case "day":
			return time.Duration(n) * 24 * time.Hour, nil
		}
	}

	return 0, errors.Wrapf(errors.ErrUnparsableSchedule, "descriptor %q", descriptor)
}

// NextRun derives the next eligible execution instant from a schedule
// descriptor and a reference time (typically the completion time of the
// run that just finished).
//
// If ref+interval has already passed relative to now, the result is
// re-based to now+interval. A scheduler that was down for a long gap
// therefore resumes one interval from now rather than burning through a
// backlog of missed slots.
//
// Returns nil for unparsable descriptors; such jobs get no automatic
// next run.
func NextRun(descriptor string, ref, now time.Time) *time.Time {
	interval, err := ParseInterval(descriptor)
	if err != nil {
		return nil
	}

	next := ref.Add(interval)
	if !next.After(now) {
		next = now.Add(interval)
	}
	return &next
}
