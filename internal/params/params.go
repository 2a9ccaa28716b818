package params

import (
	"strconv"
	"strings"
)

// Args holds the values of one command line, indexed by key and grammar.
// For each grammar the first occurrence of a key wins.
type Args struct {
	quoted map[byte]string
	bare   map[byte]string
}

// Parse tokenizes a command line into quoted and bare values.
func Parse(line string) Args {
	args := Args{
		quoted: make(map[byte]string),
		bare:   make(map[byte]string),
	}

	s := normalize(line)
	i := 0
	for i < len(s) {
		if !isSpace(s[i]) || i+1 >= len(s) || isSpace(s[i+1]) {
			i++
			continue
		}

		key := s[i+1]
		j := i + 2
		if j < len(s) && s[j] == '=' {
			j++
		}

		if j < len(s) && s[j] == '"' {
			value, next := scanQuoted(s, j+1)
			if _, seen := args.quoted[key]; !seen {
				args.quoted[key] = value
			}
			i = next
			continue
		}

		value, next := scanBare(s, j)
		if _, seen := args.bare[key]; !seen {
			args.bare[key] = value
		}
		i = next
	}

	return args
}

// Quoted returns the quoted value for key, or "" if there is none.
func (a Args) Quoted(key byte) string {
	return a.quoted[key]
}

// Bare returns the bare value for key, or "" if there is none.
func (a Args) Bare(key byte) string {
	return a.bare[key]
}

// Has reports whether key appeared in either grammar, with or without a value.
func (a Args) Has(key byte) bool {
	if _, ok := a.quoted[key]; ok {
		return true
	}
	_, ok := a.bare[key]
	return ok
}

// HasQuoted reports whether key appeared in the quoted grammar.
func (a Args) HasQuoted(key byte) bool {
	_, ok := a.quoted[key]
	return ok
}

// HasBare reports whether key appeared in the bare grammar.
func (a Args) HasBare(key byte) bool {
	_, ok := a.bare[key]
	return ok
}

// HasValue reports whether key has a non-empty bare value.
func (a Args) HasValue(key byte) bool {
	return a.bare[key] != ""
}

// Int parses the bare value for key as a decimal integer.
// The boolean is false when the key is absent, empty or not a number.
func (a Args) Int(key byte) (int, bool) {
	v := a.bare[key]
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Empty reports whether the line carried no parameters at all.
func (a Args) Empty() bool {
	return len(a.quoted) == 0 && len(a.bare) == 0
}

// Quoted extracts the value of key from line using the quoted grammar.
func Quoted(line string, key byte) string {
	return Parse(line).Quoted(key)
}

// Bare extracts the value of key from line using the bare grammar.
func Bare(line string, key byte) string {
	return Parse(line).Bare(key)
}

// normalize guarantees a leading space so the first token is matched like any other.
func normalize(line string) string {
	if line == "" || !isSpace(line[0]) {
		return " " + line
	}
	return line
}

// scanQuoted returns the content starting at start up to the next quote, and the
// index just past the closing quote. An unterminated value runs to the end of s.
func scanQuoted(s string, start int) (string, int) {
	end := strings.IndexByte(s[start:], '"')
	if end == -1 {
		return s[start:], len(s)
	}
	return s[start : start+end], start + end + 1
}

// scanBare returns the content from start to the next whitespace, and the index of
// that whitespace.
func scanBare(s string, start int) (string, int) {
	end := start
	for end < len(s) && !isSpace(s[end]) {
		end++
	}
	return s[start:end], end
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
