package gridview

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/samber/lo"
)

// _dateLayouts maps PHP date pattern characters to Go layouts.
var _dateLayouts = map[rune]string{
	'd': "02",
	'D': "Mon",
	'j': "2",
	'l': "Monday",
	'm': "01",
	'M': "Jan",
	'n': "1",
	'F': "January",
	'Y': "2006",
	'y': "06",
	'a': "pm",
	'A': "PM",
	'g': "3",
	'h': "03",
	'H': "15",
	'i': "04",
	's': "05",
	'v': ".000",
	'u': ".000000",
	'e': "MST",
	'T': "MST",
	'O': "-0700",
	'P': "-07:00",
	'p': "Z07:00",
	'c': "2006-01-02T15:04:05-07:00",
	'r': "Mon, 02 Jan 2006 15:04:05 -0700",
}

// formatTime formats t with a PHP-style date pattern ("Y-m-d H:i:s").
// A backslash escapes the next character. Unknown characters are copied.
func formatTime(t time.Time, pattern string) string {
	var b strings.Builder

	escaped := false
	for _, r := range pattern {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}

		if layout, ok := _dateLayouts[r]; ok {
			b.WriteString(strings.TrimPrefix(t.Format(layout), "."))
			continue
		}

		switch r {
		case '\\':
			escaped = true
		case 'G':
			b.WriteString(strconv.Itoa(t.Hour()))
		case 'N':
			b.WriteString(strconv.Itoa((int(t.Weekday())+6)%7 + 1))
		case 'w':
			b.WriteString(strconv.Itoa(int(t.Weekday())))
		case 'z':
			b.WriteString(strconv.Itoa(t.YearDay() - 1))
		case 'W':
			_, week := t.ISOWeek()
			b.WriteString(fmt.Sprintf("%02d", week))
		case 't':
			b.WriteString(strconv.Itoa(now.With(t).EndOfMonth().Day()))
		case 'L':
			b.WriteString(strconv.Itoa(isLeap(t.Year())))
		case 'U':
			b.WriteString(strconv.FormatInt(t.Unix(), 10))
		case 'S':
			b.WriteString(ordinalSuffix(t.Day()))
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func isLeap(year int) int {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 1
	}

	return 0
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}

	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}

	return "th"
}

// formatDuration formats d with "%" codes: %a total days, %d days, %h/%H
// hours, %i/%I minutes, %s/%S seconds, %f/%F microseconds, %R sign, %r sign
// when negative, %% a percent sign. Durations carry no calendar, so %y and %m
// are always zero. A pattern without "%" codes falls back to d.String().
func formatDuration(d time.Duration, pattern string) string {
	if !strings.Contains(pattern, "%") {
		return d.String()
	}

	negative := d < 0
	if negative {
		d = -d
	}

	days := int64(d / (24 * time.Hour))
	hours := int64(d/time.Hour) % 24
	minutes := int64(d/time.Minute) % 60
	seconds := int64(d/time.Second) % 60
	micros := int64(d/time.Microsecond) % 1_000_000

	var b strings.Builder

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 == len(runes) {
			b.WriteRune(runes[i])
			continue
		}

		i++
		switch runes[i] {
		case 'y', 'm':
			b.WriteString("0")
		case 'M':
			b.WriteString("00")
		case 'Y':
			b.WriteString("0000")
		case 'a', 'd':
			b.WriteString(strconv.FormatInt(days, 10))
		case 'D':
			b.WriteString(fmt.Sprintf("%02d", days))
		case 'h':
			b.WriteString(strconv.FormatInt(hours, 10))
		case 'H':
			b.WriteString(fmt.Sprintf("%02d", hours))
		case 'i':
			b.WriteString(strconv.FormatInt(minutes, 10))
		case 'I':
			b.WriteString(fmt.Sprintf("%02d", minutes))
		case 's':
			b.WriteString(strconv.FormatInt(seconds, 10))
		case 'S':
			b.WriteString(fmt.Sprintf("%02d", seconds))
		case 'f':
			b.WriteString(strconv.FormatInt(micros, 10))
		case 'F':
			b.WriteString(fmt.Sprintf("%06d", micros))
		case 'R':
			b.WriteString(lo.Ternary(negative, "-", "+"))
		case 'r':
			if negative {
				b.WriteString("-")
			}
		case '%':
			b.WriteRune('%')
		default:
			b.WriteRune('%')
			b.WriteRune(runes[i])
		}
	}

	return b.String()
}

// gridDate formats a date given as text or a unix timestamp. It is the
// template function behind deferred date cells.
func gridDate(value string, pattern string) (string, error) {
	value = strings.TrimSpace(value)

	if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
		return formatTime(time.Unix(ts, 0).UTC(), pattern), nil
	}

	cfg := &now.Config{
		TimeLocation: time.UTC,
		TimeFormats:  append([]string{time.RFC3339Nano, time.DateTime}, now.TimeFormats...),
	}

	t, err := cfg.Parse(value)
	if err != nil {
		return "", fmt.Errorf("date value '%s': %w", value, ErrInvalidArgument)
	}

	return formatTime(t, pattern), nil
}
