package validator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date formats use single-character tokens (d, m, Y, ...). A backslash
// escapes the next character. Unknown letters are rejected.
//
//	d j D l N w S   day, weekday and ordinal suffix
//	F M m n         month
//	Y y             year
//	a A g h G H     meridiem and hour
//	i s v u         minute, second, milliseconds, microseconds
//	T O P U         zone abbreviation, offsets, unix seconds
//	c r             ISO 8601 and RFC 2822 shorthands

var (
	weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	monthNames   = []string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}
	suffixes     = []string{"st", "nd", "rd", "th"}
)

var compoundTokens = map[byte]string{
	'c': `Y-m-d\TH:i:sP`,
	'r': `D, d M Y H:i:s O`,
}

var supportedTokens = "djDlNwSFMmnYyaAgGhHisvuTOPU"

type dateItem struct {
	token   byte
	literal byte
}

// compileDate splits format into tokens and literals.
func compileDate(format string) ([]dateItem, error) {
	var items []dateItem
	for i := 0; i < len(format); i++ {
		ch := format[i]
		switch {
		case ch == '\\':
			if i+1 < len(format) {
				i++
				if err := checkLiteral(format, format[i]); err != nil {
					return nil, err
				}
				items = append(items, dateItem{literal: format[i]})
			}
		case compoundTokens[ch] != "":
			expanded, err := compileDate(compoundTokens[ch])
			if err != nil {
				return nil, err
			}
			items = append(items, expanded...)
		case isLetter(ch):
			if !strings.ContainsRune(supportedTokens, rune(ch)) {
				return nil, fmt.Errorf("%w: date format %q uses unsupported token %q", ErrInvalidValue, format, string(ch))
			}
			items = append(items, dateItem{token: ch})
		default:
			if err := checkLiteral(format, ch); err != nil {
				return nil, err
			}
			items = append(items, dateItem{literal: ch})
		}
	}
	return items, nil
}

func checkLiteral(format string, ch byte) error {
	if ch >= '0' && ch <= '9' {
		return fmt.Errorf("%w: date format %q contains literal digit %q", ErrInvalidValue, format, string(ch))
	}
	return nil
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// FormatDate renders t with format, e.g. "m/d/Y" or "jS F Y".
func FormatDate(format string, t time.Time) (string, error) {
	items, err := compileDate(format)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, item := range items {
		if item.token == 0 {
			b.WriteByte(item.literal)
			continue
		}
		b.WriteString(formatToken(item.token, t))
	}
	return b.String(), nil
}

func formatToken(token byte, t time.Time) string {
	switch token {
	case 'd':
		return fmt.Sprintf("%02d", t.Day())
	case 'j':
		return strconv.Itoa(t.Day())
	case 'D':
		return weekdayNames[t.Weekday()][:3]
	case 'l':
		return weekdayNames[t.Weekday()]
	case 'N':
		if t.Weekday() == time.Sunday {
			return "7"
		}
		return strconv.Itoa(int(t.Weekday()))
	case 'w':
		return strconv.Itoa(int(t.Weekday()))
	case 'S':
		return ordinalSuffix(t.Day())
	case 'F':
		return monthNames[t.Month()-1]
	case 'M':
		return monthNames[t.Month()-1][:3]
	case 'm':
		return fmt.Sprintf("%02d", int(t.Month()))
	case 'n':
		return strconv.Itoa(int(t.Month()))
	case 'Y':
		return fmt.Sprintf("%04d", t.Year())
	case 'y':
		return fmt.Sprintf("%02d", t.Year()%100)
	case 'a':
		return t.Format("pm")
	case 'A':
		return t.Format("PM")
	case 'g':
		return t.Format("3")
	case 'h':
		return t.Format("03")
	case 'G':
		return strconv.Itoa(t.Hour())
	case 'H':
		return fmt.Sprintf("%02d", t.Hour())
	case 'i':
		return fmt.Sprintf("%02d", t.Minute())
	case 's':
		return fmt.Sprintf("%02d", t.Second())
	case 'v':
		return fmt.Sprintf("%03d", t.Nanosecond()/int(time.Millisecond))
	case 'u':
		return fmt.Sprintf("%06d", t.Nanosecond()/int(time.Microsecond))
	case 'T':
		return t.Format("MST")
	case 'O':
		return t.Format("-0700")
	case 'P':
		return t.Format("-07:00")
	case 'U':
		return strconv.FormatInt(t.Unix(), 10)
	}
	return ""
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
	default:
		return "th"
	}
}

// dateFields collects what ParseDate read; nil means the format did not
// carry the field.
type dateFields struct {
	year, month, day     *int
	hour, minute, second *int
	nanos                *int
	twelveHour           bool
	pm                   *bool
	weekday              *time.Weekday
	unix                 *int64
	loc                  *time.Location
}

// ParseDate reads value with format. Fields the format does not carry are
// taken from base, except that once any time-of-day field is read the
// missing ones are zero. A weekday token moves the date forward to the next
// matching day, so a weekday read back against its own date is unchanged.
func ParseDate(format, value string, base time.Time) (time.Time, error) {
	items, err := compileDate(format)
	if err != nil {
		return time.Time{}, err
	}

	var f dateFields
	rest := value
	for _, item := range items {
		if item.token == 0 {
			if rest == "" || rest[0] != item.literal {
				return time.Time{}, fmt.Errorf("%w: %q does not match %q", ErrInvalidValue, value, format)
			}
			rest = rest[1:]
			continue
		}
		if rest, err = parseToken(item.token, rest, base, &f); err != nil {
			return time.Time{}, fmt.Errorf("%w: %q does not match %q: %v", ErrInvalidValue, value, format, err)
		}
	}
	if rest != "" {
		return time.Time{}, fmt.Errorf("%w: %q has trailing text %q for %q", ErrInvalidValue, value, rest, format)
	}
	return f.build(base)
}

func parseToken(token byte, s string, base time.Time, f *dateFields) (string, error) {
	switch token {
	case 'd':
		return readInt(s, 2, 2, &f.day)
	case 'j':
		return readInt(s, 1, 2, &f.day)
	case 'm':
		return readInt(s, 2, 2, &f.month)
	case 'n':
		return readInt(s, 1, 2, &f.month)
	case 'Y':
		return readInt(s, 4, 4, &f.year)
	case 'y':
		rest, err := readInt(s, 2, 2, &f.year)
		if err == nil {
			if *f.year < 70 {
				*f.year += 2000
			} else {
				*f.year += 1900
			}
		}
		return rest, err
	case 'g', 'h':
		f.twelveHour = true
		if token == 'g' {
			return readInt(s, 1, 2, &f.hour)
		}
		return readInt(s, 2, 2, &f.hour)
	case 'G':
		return readInt(s, 1, 2, &f.hour)
	case 'H':
		return readInt(s, 2, 2, &f.hour)
	case 'i':
		return readInt(s, 2, 2, &f.minute)
	case 's':
		return readInt(s, 2, 2, &f.second)
	case 'v', 'u':
		width, unit := 3, int(time.Millisecond)
		if token == 'u' {
			width, unit = 6, int(time.Microsecond)
		}
		rest, err := readInt(s, width, width, &f.nanos)
		if err == nil {
			*f.nanos *= unit
		}
		return rest, err
	case 'D', 'l':
		names := weekdayNames
		if token == 'D' {
			names = shortNames(weekdayNames)
		}
		idx, rest, err := readName(s, names)
		if err == nil {
			day := time.Weekday(idx)
			f.weekday = &day
		}
		return rest, err
	case 'N', 'w':
		var n *int
		rest, err := readInt(s, 1, 1, &n)
		if err != nil {
			return rest, err
		}
		if token == 'N' && (*n < 1 || *n > 7) || token == 'w' && *n > 6 {
			return rest, fmt.Errorf("weekday %d out of range", *n)
		}
		day := time.Weekday(*n % 7)
		f.weekday = &day
		return rest, nil
	case 'S':
		_, rest, err := readName(s, suffixes)
		return rest, err
	case 'F', 'M':
		names := monthNames
		if token == 'M' {
			names = shortNames(monthNames)
		}
		idx, rest, err := readName(s, names)
		if err == nil {
			month := idx + 1
			f.month = &month
		}
		return rest, err
	case 'a', 'A':
		idx, rest, err := readName(s, []string{"am", "pm"})
		if err == nil {
			pm := idx == 1
			f.pm = &pm
		}
		return rest, err
	case 'T':
		n := 0
		for n < len(s) && isLetter(s[n]) {
			n++
		}
		if n == 0 {
			return s, fmt.Errorf("missing zone abbreviation")
		}
		f.loc = zoneByName(s[:n], base)
		return s[n:], nil
	case 'O', 'P':
		return readOffset(s, token == 'P', f)
	case 'U':
		n := 0
		if n < len(s) && s[n] == '-' {
			n++
		}
		for n < len(s) && s[n] >= '0' && s[n] <= '9' {
			n++
		}
		secs, err := strconv.ParseInt(s[:n], 10, 64)
		if err != nil {
			return s, fmt.Errorf("invalid unix seconds")
		}
		f.unix = &secs
		return s[n:], nil
	}
	return s, fmt.Errorf("unsupported token %q", string(token))
}

func readInt(s string, minDigits, maxDigits int, dst **int) (string, error) {
	n := 0
	for n < len(s) && n < maxDigits && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n < minDigits {
		return s, fmt.Errorf("expected %d digits", minDigits)
	}
	value, _ := strconv.Atoi(s[:n])
	*dst = &value
	return s[n:], nil
}

func readName(s string, names []string) (int, string, error) {
	for i, name := range names {
		if len(s) >= len(name) && strings.EqualFold(s[:len(name)], name) {
			return i, s[len(name):], nil
		}
	}
	return 0, s, fmt.Errorf("expected one of %s", strings.Join(names, ", "))
}

func readOffset(s string, colon bool, f *dateFields) (string, error) {
	width := 5
	if colon {
		width = 6
	}
	if len(s) < width || (s[0] != '+' && s[0] != '-') {
		return s, fmt.Errorf("invalid zone offset")
	}
	digits := s[1:width]
	if colon {
		if digits[2] != ':' {
			return s, fmt.Errorf("invalid zone offset")
		}
		digits = digits[:2] + digits[3:]
	}
	hours, err1 := strconv.Atoi(digits[:2])
	minutes, err2 := strconv.Atoi(digits[2:])
	if err1 != nil || err2 != nil || minutes > 59 {
		return s, fmt.Errorf("invalid zone offset")
	}
	offset := hours*3600 + minutes*60
	if s[0] == '-' {
		offset = -offset
	}
	f.loc = time.FixedZone("", offset)
	return s[width:], nil
}

func zoneByName(name string, base time.Time) *time.Location {
	if abbr, _ := base.Zone(); abbr == name {
		return base.Location()
	}
	switch strings.ToUpper(name) {
	case "UTC", "GMT", "Z":
		return time.UTC
	}
	return time.FixedZone(name, 0)
}

func shortNames(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name[:3]
	}
	return out
}

func (f *dateFields) build(base time.Time) (time.Time, error) {
	loc := f.loc
	if loc == nil {
		loc = base.Location()
	}
	if f.unix != nil {
		return time.Unix(*f.unix, 0).In(loc), nil
	}

	local := base.In(loc)
	year, month, day := pick(f.year, local.Year()), pick(f.month, int(local.Month())), pick(f.day, local.Day())
	hour, minute, second, nanos := local.Hour(), local.Minute(), local.Second(), local.Nanosecond()
	if f.hour != nil || f.minute != nil || f.second != nil || f.nanos != nil {
		hour, minute, second, nanos = pick(f.hour, 0), pick(f.minute, 0), pick(f.second, 0), pick(f.nanos, 0)
	}

	if f.twelveHour && f.hour != nil {
		if hour < 1 || hour > 12 {
			return time.Time{}, fmt.Errorf("%w: hour %d out of range", ErrInvalidValue, hour)
		}
		hour %= 12
		if f.pm != nil && *f.pm {
			hour += 12
		}
	}

	switch {
	case month < 1 || month > 12:
		return time.Time{}, fmt.Errorf("%w: month %d out of range", ErrInvalidValue, month)
	case day < 1 || day > daysIn(time.Month(month), year):
		return time.Time{}, fmt.Errorf("%w: day %d out of range", ErrInvalidValue, day)
	case hour > 23 || minute > 59 || second > 59:
		return time.Time{}, fmt.Errorf("%w: time %02d:%02d:%02d out of range", ErrInvalidValue, hour, minute, second)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, nanos, loc)
	if f.weekday != nil {
		t = t.AddDate(0, 0, (int(*f.weekday)-int(t.Weekday())+7)%7)
	}
	return t, nil
}

func pick(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
