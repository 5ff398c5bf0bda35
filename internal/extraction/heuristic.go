package extraction

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

// Bare numeric date triples follow the day-month-year convention:
// "3-08-2025" is the 3rd of August, not August 3rd read as month-day.
var datePatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`), "DMY"},
	{regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`), "DMY"},
	{regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`), "YMD"},
	{regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2}),?\s+(\d{4})`), "MDY"},
}

var monthsByName = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

// daysInMonth is permissive about leap years; February 29 always
// passes and an impossible Feb 29 simply produces no calendar match
// downstream.
var daysInMonth = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Time range and single-time patterns, most specific first.
var (
	// "13:00-14:00PM", "1:00-2:00PM": one optional AM/PM marker
	// applying to both ends.
	reRangeShared = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})\s*(am|pm)?`)
	// "1:00 PM to 2:00 PM": each end carries its own marker.
	reRangeSides = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(am|pm)\s*(?:to|-)\s*(\d{1,2}):(\d{2})\s*(am|pm)`)
	// "1 PM to 2 PM": bare hours with markers.
	reRangeHours = regexp.MustCompile(`(?i)(\d{1,2})\s*(am|pm)\s*(?:to|-)\s*(\d{1,2})\s*(am|pm)`)
	// "3:00 PM": single time, one hour duration assumed.
	reSingleAmPm = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(am|pm)`)
	// "15:00": bare 24-hour single time.
	reSingle = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// heuristicStrategy applies ordered date and time patterns with
// calendar validity checks, then relative-date and time-of-day
// resolution. It succeeds only when at least one field was actually
// recognized; pure noise falls through to the basic strategy.
type heuristicStrategy struct{}

func (h *heuristicStrategy) name() string { return "heuristic" }

func (h *heuristicStrategy) extract(_ context.Context, text string, snap *Snapshot, now time.Time) (negotiation.Slot, bool) {
	lower := strings.ToLower(text)

	date := parseDateStrict(text)
	start, end := parseTimeRange(text)

	if date == "" {
		date = resolveRelativeDate(lower, now)
	}
	if start == "" {
		start, end = resolveTimeBlock(lower)
	}
	if date == "" && snap != nil && snap.ScheduledDate != "" {
		date = resolveContextRelativeDate(lower, snap.ScheduledDate)
	}

	if date == "" && start == "" {
		return negotiation.Slot{}, false
	}

	if date == "" {
		date = isoDate(now.AddDate(0, 0, 1))
	}
	if start == "" {
		start, end = "10:00", "11:00"
		if snap != nil && snap.ScheduledStartTime != "" {
			start = snap.ScheduledStartTime
			end = snap.ScheduledEndTime
		}
	}

	return negotiation.Slot{Date: date, StartTime: start, EndTime: end}, true
}

// parseDateStrict matches the ordered date patterns and rejects
// calendar-invalid results (day>31, month>12, day past the month's
// length, year before 2025 for bare numeric triples).
func parseDateStrict(text string) string {
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		switch p.format {
		case "DMY":
			day, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			if day < 1 || day > 31 || month < 1 || month > 12 || year < 2025 {
				continue
			}
			if day > daysInMonth[month-1] {
				continue
			}
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)

		case "YMD":
			year, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			day, _ := strconv.Atoi(m[3])
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)

		case "MDY":
			month := monthsByName[strings.ToLower(m[1])]
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		}
	}
	return ""
}

// parseTimeRange matches the ordered time patterns and normalizes to
// the 24-hour clock. Single times assume a one hour duration.
func parseTimeRange(text string) (start, end string) {
	if m := reRangeSides.FindStringSubmatch(text); m != nil {
		sh, _ := strconv.Atoi(m[1])
		sm, _ := strconv.Atoi(m[2])
		eh, _ := strconv.Atoi(m[4])
		em, _ := strconv.Atoi(m[5])
		sh = toTwentyFourHour(sh, m[3])
		eh = toTwentyFourHour(eh, m[6])
		return clock(sh, sm), clock(eh, em)
	}

	if m := reRangeShared.FindStringSubmatch(text); m != nil {
		sh, _ := strconv.Atoi(m[1])
		sm, _ := strconv.Atoi(m[2])
		eh, _ := strconv.Atoi(m[3])
		em, _ := strconv.Atoi(m[4])
		if marker := strings.ToLower(m[5]); marker != "" {
			// A trailing PM on an already 24-hour range is a no-op.
			sh = toTwentyFourHour(sh, marker)
			eh = toTwentyFourHour(eh, marker)
		}
		return clock(sh, sm), clock(eh, em)
	}

	if m := reRangeHours.FindStringSubmatch(text); m != nil {
		sh, _ := strconv.Atoi(m[1])
		eh, _ := strconv.Atoi(m[3])
		sh = toTwentyFourHour(sh, m[2])
		eh = toTwentyFourHour(eh, m[4])
		return clock(sh, 0), clock(eh, 0)
	}

	if m := reSingleAmPm.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		h = toTwentyFourHour(h, m[3])
		return clock(h, min), clock((h+1)%24, min)
	}

	if m := reSingle.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		return clock(h, min), clock((h+1)%24, min)
	}

	return "", ""
}

// toTwentyFourHour applies an AM/PM marker: PM adds 12 unless the
// hour is already 12 or later, AM zeroes 12.
func toTwentyFourHour(hour int, marker string) int {
	switch strings.ToLower(marker) {
	case "pm":
		if hour < 12 {
			return hour + 12
		}
	case "am":
		if hour == 12 {
			return 0
		}
	}
	return hour
}

func clock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

var (
	reDayAfterTomorrow = regexp.MustCompile(`\bday\s+after\s+tomorrow\b`)
	reTomorrow         = regexp.MustCompile(`\btomorrow\b`)
	reToday            = regexp.MustCompile(`\btoday\b`)
	reNextWeek         = regexp.MustCompile(`\bnext\s+week\b`)
)

func resolveRelativeDate(lower string, now time.Time) string {
	switch {
	case reDayAfterTomorrow.MatchString(lower):
		return isoDate(now.AddDate(0, 0, 2))
	case reTomorrow.MatchString(lower):
		return isoDate(now.AddDate(0, 0, 1))
	case reToday.MatchString(lower):
		return isoDate(now)
	case reNextWeek.MatchString(lower):
		return isoDate(now.AddDate(0, 0, 7))
	}
	return ""
}

var (
	reBefore = regexp.MustCompile(`\b(before|previous|earlier)\b`)
	reAfter  = regexp.MustCompile(`\b(after|next|later)\b`)
)

// resolveContextRelativeDate shifts the currently scheduled date by
// one day for "before"/"after" style requests.
func resolveContextRelativeDate(lower, scheduledDate string) string {
	base, err := time.Parse("2006-01-02", scheduledDate)
	if err != nil {
		return ""
	}
	switch {
	case reBefore.MatchString(lower):
		return isoDate(base.AddDate(0, 0, -1))
	case reAfter.MatchString(lower):
		return isoDate(base.AddDate(0, 0, 1))
	}
	return ""
}

func resolveTimeBlock(lower string) (start, end string) {
	switch {
	case strings.Contains(lower, "morning"):
		return "09:00", "10:00"
	case strings.Contains(lower, "afternoon"):
		return "14:00", "15:00"
	case strings.Contains(lower, "evening"):
		return "18:00", "19:00"
	case strings.Contains(lower, "night"):
		return "20:00", "21:00"
	}
	return "", ""
}

var (
	reBasicDMY   = regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`)
	reBasicYMD   = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	reBasicSlash = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
)

// numericDate assembles YYYY-MM-DD from string components without
// calendar validation.
func numericDate(year, month, day string) string {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// basicStrategy is the last resort: any of three date shapes without
// validity checking, a fixed afternoon window, and tomorrow when no
// date is present at all.
type basicStrategy struct{}

func (b *basicStrategy) name() string { return "basic" }

func (b *basicStrategy) extract(_ context.Context, text string, _ *Snapshot, now time.Time) (negotiation.Slot, bool) {
	const start, end = "14:00", "15:00"

	if m := reBasicDMY.FindStringSubmatch(text); m != nil {
		return negotiation.Slot{Date: numericDate(m[3], m[2], m[1]), StartTime: start, EndTime: end}, true
	}
	if m := reBasicYMD.FindStringSubmatch(text); m != nil {
		return negotiation.Slot{Date: numericDate(m[1], m[2], m[3]), StartTime: start, EndTime: end}, true
	}
	if m := reBasicSlash.FindStringSubmatch(text); m != nil {
		return negotiation.Slot{Date: numericDate(m[3], m[2], m[1]), StartTime: start, EndTime: end}, true
	}

	return b.fallback(now), true
}

func (b *basicStrategy) fallback(now time.Time) negotiation.Slot {
	return negotiation.Slot{
		Date:      isoDate(now.AddDate(0, 0, 1)),
		StartTime: "14:00",
		EndTime:   "15:00",
	}
}
