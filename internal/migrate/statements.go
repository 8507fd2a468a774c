package migrate

import (
	"strings"
)

// SplitStatements splits a SQL script into individual statements on
// semicolons, respecting single-quoted strings (with '' escapes), quoted
// identifiers, line comments, block comments (nested, as postgres allows)
// and dollar-quoted bodies. The driver's extended query protocol executes
// one statement per round-trip, so multi-statement scripts must be split
// before execution.
func SplitStatements(script string) []string {
	var statements []string
	var buf strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(buf.String())
		buf.Reset()
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}

	i := 0
	n := len(script)
	for i < n {
		c := script[i]

		switch {
		// Line comment: consumed, not emitted.
		case c == '-' && i+1 < n && script[i+1] == '-':
			for i < n && script[i] != '\n' {
				i++
			}

		// Block comment, possibly nested.
		case c == '/' && i+1 < n && script[i+1] == '*':
			depth := 1
			i += 2
			for i < n && depth > 0 {
				if script[i] == '/' && i+1 < n && script[i+1] == '*' {
					depth++
					i += 2
				} else if script[i] == '*' && i+1 < n && script[i+1] == '/' {
					depth--
					i += 2
				} else {
					i++
				}
			}

		// Single-quoted string; '' is an escaped quote.
		case c == '\'':
			buf.WriteByte(c)
			i++
			for i < n {
				buf.WriteByte(script[i])
				if script[i] == '\'' {
					if i+1 < n && script[i+1] == '\'' {
						buf.WriteByte(script[i+1])
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}

		// Quoted identifier.
		case c == '"':
			buf.WriteByte(c)
			i++
			for i < n {
				buf.WriteByte(script[i])
				if script[i] == '"' {
					i++
					break
				}
				i++
			}

		// Dollar-quoted body: $tag$ ... $tag$.
		case c == '$':
			if tag, ok := dollarTag(script[i:]); ok {
				end := strings.Index(script[i+len(tag):], tag)
				if end < 0 {
					// Unterminated; emit the rest verbatim.
					buf.WriteString(script[i:])
					i = n
					break
				}
				buf.WriteString(script[i : i+len(tag)+end+len(tag)])
				i += len(tag) + end + len(tag)
			} else {
				buf.WriteByte(c)
				i++
			}

		case c == ';':
			flush()
			i++

		default:
			buf.WriteByte(c)
			i++
		}
	}
	flush()

	return statements
}

// dollarTag reports whether s starts with a dollar-quote opener like $$ or
// $body$, returning the full tag including both dollar signs.
func dollarTag(s string) (string, bool) {
	if len(s) < 2 || s[0] != '$' {
		return "", false
	}
	for j := 1; j < len(s); j++ {
		c := s[j]
		if c == '$' {
			return s[:j+1], true
		}
		if !isTagChar(c) {
			return "", false
		}
	}
	return "", false
}

func isTagChar(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
