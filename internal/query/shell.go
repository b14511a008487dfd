package query

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// isoLayouts are the date forms accepted by ISODate()
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// shellScanner rewrites mongo shell syntax into Extended JSON
type shellScanner struct {
	src string
	pos int
	out strings.Builder

	// depth counts open braces and brackets; closed is set once the
	// top-level value has been consumed
	depth  int
	closed bool
}

func normalize(s string) (string, error) {
	sc := &shellScanner{src: s}
	if err := sc.run(); err != nil {
		return "", err
	}
	return sc.out.String(), nil
}

func (s *shellScanner) run() error {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if s.closed && !isSpace(c) {
			return fmt.Errorf("unexpected %q after document at offset %d", c, s.pos)
		}
		switch {
		case c == '"' || c == '\'':
			str, err := s.readString()
			if err != nil {
				return err
			}
			s.writeQuoted(str)
		case c == '/':
			if err := s.readRegex(); err != nil {
				return err
			}
		case c == '-' || (c >= '0' && c <= '9'):
			start := s.pos
			for s.pos < len(s.src) && isNumberPart(s.src[s.pos]) {
				s.pos++
			}
			s.out.WriteString(s.src[start:s.pos])
		case isIdentStart(c):
			if err := s.readIdent(); err != nil {
				return err
			}
		default:
			switch c {
			case '{', '[':
				s.depth++
			case '}', ']':
				s.depth--
				if s.depth < 0 {
					return fmt.Errorf("unbalanced %q at offset %d", c, s.pos)
				}
				if s.depth == 0 {
					s.closed = true
				}
			}
			s.out.WriteByte(c)
			s.pos++
		}
	}
	return nil
}

// readString consumes a single or double quoted literal and returns its value
func (s *shellScanner) readString() (string, error) {
	quote := s.src[s.pos]
	start := s.pos
	s.pos++

	var b strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == quote:
			s.pos++
			if !utf8.ValidString(b.String()) {
				return "", fmt.Errorf("invalid UTF-8 in string at offset %d", start)
			}
			return b.String(), nil
		case c == '\\':
			if s.pos+1 >= len(s.src) {
				return "", fmt.Errorf("unterminated string at offset %d", start)
			}
			r, n, err := unescape(s.src[s.pos:])
			if err != nil {
				return "", fmt.Errorf("offset %d: %w", s.pos, err)
			}
			b.WriteString(r)
			s.pos += n
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	return "", fmt.Errorf("unterminated string at offset %d", start)
}

// unescape decodes the escape sequence at the start of s, returning the
// decoded text and the number of bytes consumed
func unescape(s string) (string, int, error) {
	switch s[1] {
	case '\'':
		return "'", 2, nil
	case '"':
		return `"`, 2, nil
	case '\\':
		return `\`, 2, nil
	case '/':
		return "/", 2, nil
	case 'b':
		return "\b", 2, nil
	case 'f':
		return "\f", 2, nil
	case 'n':
		return "\n", 2, nil
	case 'r':
		return "\r", 2, nil
	case 't':
		return "\t", 2, nil
	case 'u':
		if len(s) < 6 {
			return "", 0, fmt.Errorf("short unicode escape")
		}
		var r string
		if err := json.Unmarshal([]byte(`"`+s[:6]+`"`), &r); err != nil {
			return "", 0, fmt.Errorf("invalid unicode escape %q", s[:6])
		}
		return r, 6, nil
	default:
		return "", 0, fmt.Errorf("invalid escape %q", s[:2])
	}
}

// readIdent handles bare words: keys, literals and helper calls
func (s *shellScanner) readIdent() error {
	start := s.pos
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	word := s.src[start:s.pos]

	next := s.peekNonSpace()
	switch {
	case next == ':':
		s.writeQuoted(word)
		return nil
	case next == '(':
		return s.readCall(word)
	}

	switch word {
	case "true", "false", "null":
		s.out.WriteString(word)
		return nil
	}
	return fmt.Errorf("unexpected %q at offset %d", word, start)
}

// readCall rewrites ObjectId("..") style helpers
func (s *shellScanner) readCall(name string) error {
	s.skipSpace()
	s.pos++ // (
	s.skipSpace()

	var arg string
	quoted := false
	if s.pos < len(s.src) && (s.src[s.pos] == '"' || s.src[s.pos] == '\'') {
		str, err := s.readString()
		if err != nil {
			return err
		}
		arg, quoted = str, true
	} else {
		start := s.pos
		for s.pos < len(s.src) && isNumberPart(s.src[s.pos]) {
			s.pos++
		}
		arg = s.src[start:s.pos]
	}

	s.skipSpace()
	if s.pos >= len(s.src) || s.src[s.pos] != ')' {
		return fmt.Errorf("%s: expected ')' at offset %d", name, s.pos)
	}
	s.pos++

	switch name {
	case "ObjectId":
		if !quoted {
			return fmt.Errorf("ObjectId expects a hex string")
		}
		s.writeWrapped("$oid", arg)
	case "ISODate", "Date":
		if !quoted {
			return fmt.Errorf("%s expects a date string", name)
		}
		t, err := parseISODate(arg)
		if err != nil {
			return err
		}
		s.writeWrapped("$date", t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	case "NumberLong":
		if _, err := strconv.ParseInt(arg, 10, 64); err != nil {
			return fmt.Errorf("NumberLong: invalid value %q", arg)
		}
		s.writeWrapped("$numberLong", arg)
	case "NumberInt":
		if _, err := strconv.ParseInt(arg, 10, 32); err != nil {
			return fmt.Errorf("NumberInt: invalid value %q", arg)
		}
		s.writeWrapped("$numberInt", arg)
	case "NumberDecimal":
		if arg == "" {
			return fmt.Errorf("NumberDecimal: missing value")
		}
		s.writeWrapped("$numberDecimal", arg)
	default:
		return fmt.Errorf("unsupported helper %s()", name)
	}
	return nil
}

// readRegex rewrites /pattern/flags as a $regularExpression document
func (s *shellScanner) readRegex() error {
	start := s.pos
	s.pos++

	var pattern strings.Builder
	closed := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) {
			if s.src[s.pos+1] != '/' {
				pattern.WriteByte(c)
			}
			pattern.WriteByte(s.src[s.pos+1])
			s.pos += 2
			continue
		}
		s.pos++
		if c == '/' {
			closed = true
			break
		}
		pattern.WriteByte(c)
	}
	if !closed {
		return fmt.Errorf("unterminated regular expression at offset %d", start)
	}
	if !utf8.ValidString(pattern.String()) {
		return fmt.Errorf("invalid UTF-8 in regular expression at offset %d", start)
	}

	flagStart := s.pos
	for s.pos < len(s.src) && isLetter(s.src[s.pos]) {
		if !strings.ContainsRune("imsux", rune(s.src[s.pos])) {
			return fmt.Errorf("invalid regular expression flag %q", s.src[s.pos])
		}
		s.pos++
	}
	flags := []byte(s.src[flagStart:s.pos])
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })

	s.out.WriteString(`{"$regularExpression":{"pattern":`)
	s.writeQuoted(pattern.String())
	s.out.WriteString(`,"options":`)
	s.writeQuoted(string(flags))
	s.out.WriteString("}}")
	return nil
}

func (s *shellScanner) writeQuoted(v string) {
	b, _ := json.Marshal(v)
	s.out.Write(b)
}

func (s *shellScanner) writeWrapped(key, v string) {
	s.out.WriteString(`{"` + key + `":`)
	s.writeQuoted(v)
	s.out.WriteByte('}')
}

func (s *shellScanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func (s *shellScanner) peekNonSpace() byte {
	for i := s.pos; i < len(s.src); i++ {
		if !isSpace(s.src[i]) {
			return s.src[i]
		}
	}
	return 0
}

func parseISODate(v string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("ISODate: invalid date %q", v)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool {
	return isLetter(c) || c == '_' || c == '$'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '.'
}

func isNumberPart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E'
}
