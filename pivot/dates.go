package pivot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Granularity is the interval a date or datetime field is grouped by.
type Granularity string

const (
	Day     Granularity = "day"
	// Week groups are numbered as ISO weeks: a week belongs to the year
	// holding its Thursday, so "W53 2020" ends on 3 Jan 2021. Servers
	// grouping by a locale with Sunday based weeks label the days around
	// New Year differently.
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// DefaultGranularity is used when a date field is grouped without suffix.
const DefaultGranularity = Month

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case Day, Week, Month, Quarter, Year:
		return true
	}
	return false
}

var groupLabelLayouts = map[Granularity]string{
	Day:   "02 Jan 2006",
	Month: "January 2006",
	Year:  "2006",
}

// ParseGroupLabel parses the group value returned by read_group for this
// granularity ("April 2023", "W15 2023", "Q2 2023", ...). ISO dates are
// accepted as well since some servers return the range start.
func (g Granularity) ParseGroupLabel(label string) (time.Time, error) {
	label = strings.TrimSpace(label)
	switch g {
	case Week:
		var week, year int
		if _, err := fmt.Sscanf(label, "W%d %d", &week, &year); err == nil {
			return isoWeekStart(year, week), nil
		}
	case Quarter:
		var quarter, year int
		if _, err := fmt.Sscanf(label, "Q%d %d", &quarter, &year); err == nil && quarter >= 1 && quarter <= 4 {
			return time.Date(year, time.Month(3*(quarter-1)+1), 1, 0, 0, 0, 0, time.UTC), nil
		}
	default:
		if layout, ok := groupLabelLayouts[g]; ok {
			if t, err := time.Parse(layout, label); err == nil {
				return t, nil
			}
		}
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, label); err == nil {
			return g.Truncate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q as a %s group", ErrInvalidArguments, label, g)
}

// FormatArg renders t as the value used in formula arguments:
// day 04/15/2023, week 15/2023, month 04/2023, quarter 2/2023, year 2023.
func (g Granularity) FormatArg(t time.Time) string {
	switch g {
	case Day:
		return t.Format("01/02/2006")
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%02d/%d", week, year)
	case Quarter:
		return fmt.Sprintf("%d/%d", quarterOf(t), t.Year())
	case Year:
		return strconv.Itoa(t.Year())
	default:
		return t.Format("01/2006")
	}
}

// ParseArg parses a formula argument written in the FormatArg layout.
// Leading zeros are optional.
func (g Granularity) ParseArg(arg string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(arg), "/")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q is not a %s value", ErrInvalidArguments, arg, g)
		}
		nums[i] = n
	}

	invalid := fmt.Errorf("%w: %q is not a %s value", ErrInvalidArguments, arg, g)
	switch g {
	case Day:
		if len(nums) != 3 || nums[0] < 1 || nums[0] > 12 || nums[1] < 1 || nums[1] > 31 {
			return time.Time{}, invalid
		}
		t := time.Date(nums[2], time.Month(nums[0]), nums[1], 0, 0, 0, 0, time.UTC)
		if t.Day() != nums[1] {
			return time.Time{}, invalid
		}
		return t, nil
	case Week:
		if len(nums) != 2 || nums[0] < 1 || nums[0] > 53 {
			return time.Time{}, invalid
		}
		return isoWeekStart(nums[1], nums[0]), nil
	case Quarter:
		if len(nums) != 2 || nums[0] < 1 || nums[0] > 4 {
			return time.Time{}, invalid
		}
		return time.Date(nums[1], time.Month(3*(nums[0]-1)+1), 1, 0, 0, 0, 0, time.UTC), nil
	case Year:
		if len(nums) != 1 {
			return time.Time{}, invalid
		}
		return time.Date(nums[0], time.January, 1, 0, 0, 0, 0, time.UTC), nil
	default:
		if len(nums) != 2 || nums[0] < 1 || nums[0] > 12 {
			return time.Time{}, invalid
		}
		return time.Date(nums[1], time.Month(nums[0]), 1, 0, 0, 0, 0, time.UTC), nil
	}
}

// NormalizeArg rewrites a formula argument in its canonical layout.
func (g Granularity) NormalizeArg(arg string) (string, error) {
	t, err := g.ParseArg(arg)
	if err != nil {
		return "", err
	}
	return g.FormatArg(t), nil
}

// Display renders t for headers and tooltips.
func (g Granularity) Display(t time.Time) string {
	switch g {
	case Day:
		return t.Format("02 Jan 2006")
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("W%d %d", week, year)
	case Quarter:
		return fmt.Sprintf("Q%d %d", quarterOf(t), t.Year())
	case Year:
		return strconv.Itoa(t.Year())
	default:
		return t.Format("January 2006")
	}
}

// Add moves t by n intervals.
func (g Granularity) Add(t time.Time, n int) time.Time {
	switch g {
	case Day:
		return t.AddDate(0, 0, n)
	case Week:
		return t.AddDate(0, 0, 7*n)
	case Quarter:
		return t.AddDate(0, 3*n, 0)
	case Year:
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, n, 0)
	}
}

// IncrementArg moves a formula argument by n intervals.
func (g Granularity) IncrementArg(arg string, n int) (string, error) {
	t, err := g.ParseArg(arg)
	if err != nil {
		return "", err
	}
	return g.FormatArg(g.Add(t, n)), nil
}

// Truncate returns the start of the interval containing t.
func (g Granularity) Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	switch g {
	case Day:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case Week:
		year, week := t.ISOWeek()
		return isoWeekStart(year, week)
	case Quarter:
		return time.Date(y, time.Month(3*(quarterOf(t)-1)+1), 1, 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// isoWeekStart returns the Monday of ISO week `week` of ISO year `year`.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, 7*(week-1))
}
