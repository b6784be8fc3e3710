package strfile

import "strings"

// scanQuoted reads a double-quoted field starting at s[start] == '"'.
// It returns the raw (still escaped) text between the quotes and the index
// just past the closing quote. An escaped quote never ends the field.
func scanQuoted(s string, start int) (raw string, end int, ok bool) {
	if start >= len(s) || s[start] != '"' {
		return "", start, false
	}
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return s[start+1 : i], i + 1, true
		}
	}
	return "", start, false
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r') {
		i++
	}
	return i
}

// statement is one `key = "value";` match inside a line.
type statement struct {
	key      string
	rawValue string
	start    int // index of the first key character (or its opening quote)
	end      int // index just past the closing quote and optional ';'
}

// matchStatementAt matches a key/value statement beginning at s[pos].
// Keys may be quoted or bare; values must be double-quoted. Whatever follows
// the statement must be blank or a comment, otherwise the line is malformed.
func matchStatementAt(s string, pos int) (statement, bool) {
	st := statement{start: pos}
	i := pos
	if i >= len(s) {
		return st, false
	}

	if s[i] == '"' {
		key, next, ok := scanQuoted(s, i)
		if !ok || key == "" {
			return st, false
		}
		st.key = key
		i = skipSpace(s, next)
		if i >= len(s) || s[i] != '=' {
			return st, false
		}
	} else {
		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			return st, false
		}
		key := strings.TrimSpace(s[i : i+eq])
		if !isBareKey(key) {
			return st, false
		}
		st.key = key
		i += eq
	}

	i = skipSpace(s, i+1)
	raw, next, ok := scanQuoted(s, i)
	if !ok {
		return st, false
	}
	st.rawValue = raw
	i = skipSpace(s, next)
	if i < len(s) && s[i] == ';' {
		i++
	}
	st.end = i

	rest := strings.TrimSpace(s[i:])
	if rest != "" && !isCommentStart(rest) {
		return st, false
	}
	return st, true
}

// isBareKey accepts unquoted keys. Comment openers and stray quotes are
// rejected so `// "a" = "b"` is never read as a key named `// "a"`.
func isBareKey(key string) bool {
	if key == "" || strings.ContainsAny(key, "\"") {
		return false
	}
	if key[0] == '/' || key[0] == '*' {
		return false
	}
	return !strings.Contains(key, "/*") && !strings.Contains(key, "//")
}

func isCommentStart(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*")
}

// findStatement looks for a statement at the start of line, or right after
// one or more complete leading block comments (`/* note */ "k" = "v";`).
func findStatement(line string) (statement, bool) {
	pos := skipSpace(line, 0)
	for {
		if st, ok := matchStatementAt(line, pos); ok {
			return st, true
		}
		if !strings.HasPrefix(line[pos:], "/*") {
			return statement{}, false
		}
		closeAt := strings.Index(line[pos+2:], "*/")
		if closeAt < 0 {
			return statement{}, false
		}
		pos = skipSpace(line, pos+2+closeAt+2)
	}
}

// opensBlock reports whether s leaves a /* … */ comment unterminated.
// When inBlock is true, s is taken to start inside a comment. Markers inside
// a quoted run are ignored, and a quote left open ends with s.
func opensBlock(s string, inBlock bool) bool {
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inBlock:
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				inBlock = false
				i++
			}
		case inString:
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			inBlock = true
			i++
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			// A line comment swallows everything after it.
			return false
		}
	}
	return inBlock
}
