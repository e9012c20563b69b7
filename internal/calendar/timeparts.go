package calendar

import "strings"

// ExtractTimeParts pulls the hour and minute digits out of a wall-clock
// timestamp string ("YYYY-MM-DDTHH:MM:SS"). The digits after the 'T' are
// read verbatim, never routed through a date parser, so the stored
// wall-clock moment cannot shift under the host machine's timezone.
// Fractional seconds and offset suffixes are ignored. A string without a
// recognizable time component yields 00:00 instead of an error; callers
// rely on that degrade.
func ExtractTimeParts(ts string) (hours, minutes int) {
	_, rest, ok := strings.Cut(ts, "T")
	if !ok {
		return 0, 0
	}
	hh, mm, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, 0
	}
	h, ok := leadingInt(hh)
	if !ok {
		return 0, 0
	}
	m, ok := leadingInt(mm)
	if !ok {
		return 0, 0
	}
	return h, m
}

// leadingInt parses the leading decimal digits of s, so trailing noise
// ("30-04:00", "00.123Z") does not poison the value.
func leadingInt(s string) (int, bool) {
	n, i := 0, 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	if i == 0 {
		return 0, false
	}
	return n, true
}
