package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// form is one top-level expression of a scene source.
type form struct {
	text string
	line int
}

// lineOf returns the source line of byte offset off within f.
func (f form) lineOf(off int) int {
	return f.line + strings.Count(f.text[:off], "\n")
}

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// splitForms breaks source into its top-level forms, dropping comments
// and whitespace between them. Unbalanced delimiters are reported at
// the line of the delimiter that could not be matched.
func splitForms(source string) ([]form, *EvalError) {
	var forms []form
	line := 1
	i := 0
	for i < len(source) {
		c := source[i]
		switch {
		case c == '\n':
			line++
			i++
			continue
		case c == ' ' || c == '\t' || c == '\r':
			i++
			continue
		case c == ';' || strings.HasPrefix(source[i:], "//"):
			for i < len(source) && source[i] != '\n' {
				i++
			}
			continue
		case c == ')' || c == ']' || c == '}':
			return nil, &EvalError{Line: line, Message: fmt.Sprintf("unexpected %q", c)}
		}

		start, startLine := i, line
		for i < len(source) && source[i] == '\'' {
			i++
		}
		end, endLine, err := scanDatum(source, i, line)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form{text: source[start:end], line: startLine})
		i, line = end, endLine
	}
	return forms, nil
}

// scanDatum returns the offset just past the datum starting at i, and
// the line that offset is on.
func scanDatum(source string, i, line int) (int, int, *EvalError) {
	if i >= len(source) {
		return i, line, nil
	}
	switch c := source[i]; c {
	case '"', '`':
		return scanString(source, i, line)
	case '(', '[', '{':
		type open struct {
			want byte
			line int
		}
		stack := []open{{closers[c], line}}
		i++
		for len(stack) > 0 {
			if i >= len(source) {
				top := stack[len(stack)-1]
				return 0, 0, &EvalError{Line: top.line, Message: fmt.Sprintf("missing %q", top.want)}
			}
			switch c := source[i]; {
			case c == '\n':
				line++
				i++
			case c == '"' || c == '`':
				var err *EvalError
				if i, line, err = scanString(source, i, line); err != nil {
					return 0, 0, err
				}
			case c == ';' || strings.HasPrefix(source[i:], "//"):
				for i < len(source) && source[i] != '\n' {
					i++
				}
			case c == '(' || c == '[' || c == '{':
				stack = append(stack, open{closers[c], line})
				i++
			case c == ')' || c == ']' || c == '}':
				if top := stack[len(stack)-1]; c != top.want {
					return 0, 0, &EvalError{Line: line, Message: fmt.Sprintf("unexpected %q, want %q", c, top.want)}
				}
				stack = stack[:len(stack)-1]
				i++
			default:
				i++
			}
		}
		return i, line, nil
	}
	for i < len(source) && !strings.ContainsRune(" \t\r\n()[]{}\";", rune(source[i])) {
		i++
	}
	return i, line, nil
}

func scanString(source string, i, line int) (int, int, *EvalError) {
	quote, startLine := source[i], line
	i++
	for i < len(source) {
		switch source[i] {
		case quote:
			return i + 1, line, nil
		case '\n':
			line++
		case '\\':
			if quote == '"' {
				i++
			}
		}
		i++
	}
	return 0, 0, &EvalError{Line: startLine, Message: "unterminated string"}
}

var (
	// zygomys parse errors carry a line relative to the loaded text.
	zygoLine = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	// Runtime errors are wrapped with the name of the failing call.
	zygoCall = regexp.MustCompile(`^Error calling '[^']*':\s*`)
	// Keyword names in builtin errors, in either spelling.
	badKeyword = regexp.MustCompile(`unknown (?:field "([a-z0-9_]+)"|keyword :([a-z0-9-]+))`)
)

// formError maps an error from evaluating f onto the scene source.
// Errors that name a keyword point at the keyword's own line; anything
// else is reported at the line the form starts on.
func formError(f form, err error) EvalError {
	msg := strings.TrimSpace(err.Error())
	if m := zygoLine.FindStringSubmatch(msg); m != nil {
		n, _ := strconv.Atoi(m[1])
		return EvalError{Line: f.line + max(n, 1) - 1, Message: strings.TrimSpace(m[2])}
	}
	msg = zygoCall.ReplaceAllString(msg, "")
	msg = strings.Join(strings.Fields(msg), " ")

	line := f.line
	if m := badKeyword.FindStringSubmatch(msg); m != nil {
		kw := m[2]
		if kw == "" {
			kw = strings.ReplaceAll(m[1], "_", "-")
		}
		if off := strings.Index(f.text, ":"+kw); off >= 0 {
			line = f.lineOf(off)
		}
	}
	return EvalError{Line: line, Message: msg}
}
