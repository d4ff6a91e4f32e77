package logging

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Entry is one parsed line of couchsplit.log.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	// Attrs holds every other key in line order.
	Attrs []Attr
	// Raw is the line as written.
	Raw string
}

// Attr is a key=value pair from a log line.
type Attr struct {
	Key   string
	Value string
}

// Attr returns the value of key, or "".
func (e Entry) Attr(key string) string {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// Filter selects log entries. Zero fields match everything.
type Filter struct {
	// MinLevel keeps entries at or above this level.
	MinLevel  string
	SessionID string
	Game      string
	Since     time.Time
	Pattern   *regexp.Regexp
}

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Match reports whether e passes every set criterion.
func (f Filter) Match(e Entry) bool {
	if f.MinLevel != "" && levelOrder[strings.ToUpper(e.Level)] < levelOrder[ParseLevel(f.MinLevel)] {
		return false
	}
	if f.SessionID != "" && !strings.HasPrefix(e.Attr("session_id"), f.SessionID) {
		return false
	}
	if f.Game != "" && e.Attr("game") != f.Game {
		return false
	}
	if !f.Since.IsZero() && !e.Time.IsZero() && e.Time.Before(f.Since) {
		return false
	}
	if f.Pattern != nil && !f.Pattern.MatchString(e.Raw) {
		return false
	}
	return true
}

// ParseLine parses a line written by the logger's text handler.
func ParseLine(line string) (Entry, error) {
	e := Entry{Raw: line}
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return Entry{}, fmt.Errorf("malformed attribute near %q", rest)
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			end := closingQuote(rest)
			if end < 0 {
				return Entry{}, fmt.Errorf("unterminated value for %s", key)
			}
			v, err := strconv.Unquote(rest[:end+1])
			if err != nil {
				return Entry{}, fmt.Errorf("bad value for %s: %w", key, err)
			}
			value = v
			rest = rest[end+1:]
		} else {
			sp := strings.IndexByte(rest, ' ')
			if sp < 0 {
				sp = len(rest)
			}
			value = rest[:sp]
			rest = rest[sp:]
		}
		rest = strings.TrimLeft(rest, " ")

		switch key {
		case "time":
			if t, err := time.ParseInLocation(timeLayout, value, time.Local); err == nil {
				e.Time = t
			}
		case "level":
			e.Level = value
		case "msg":
			e.Message = value
		default:
			e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
		}
	}
	if e.Level == "" {
		return Entry{}, fmt.Errorf("missing level")
	}
	return e, nil
}

// closingQuote returns the index of the quote ending the string at s[0].
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// ReadFile returns the entries of a log file that match f, oldest first.
// Lines that do not parse are skipped. With tail > 0 only the last tail
// matches are returned.
func ReadFile(path string, f Filter, tail int) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var out []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		e, err := ParseLine(scanner.Text())
		if err != nil || !f.Match(e) {
			continue
		}
		out = append(out, e)
		if tail > 0 && len(out) > 2*tail {
			out = append(out[:0], out[len(out)-tail:]...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	if tail > 0 && len(out) > tail {
		out = out[len(out)-tail:]
	}
	return out, nil
}
