package ical

import (
	"strings"
)

// Turn raw iCalendar text into the top-level containers it holds. A regular
// calendar document yields exactly one VCALENDAR container.
func ParseString(text string) ([]*Container, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return ParseLines(strings.Split(text, "\n"))
}

// Same as ParseString but takes pre-split physical lines. Lines are unfolded
// (a leading space or tab continues the previous logical line), parsed into
// content lines, and grouped into containers by their BEGIN/END pairs.
func ParseLines(lines []string) ([]*Container, error) {
	type openBlock struct {
		container *Container
		line      int
	}

	var topLevel []*Container
	var stack []openBlock

	appendNode := func(node Node) {
		current := stack[len(stack)-1].container
		current.Items = append(current.Items, node)
	}

	for _, logical := range unfoldLines(lines) {
		if strings.TrimSpace(logical.text) == "" {
			continue
		}
		contentLine, err := parseContentLine(logical.text)
		if err != nil {
			return nil, NewStructuralError("malformed content line", map[string]any{
				"line":    logical.number,
				"content": logical.text,
				"err":     err,
			})
		}

		switch contentLine.Name {
		case "BEGIN":
			block := NewContainer(contentLine.Value)
			stack = append(stack, openBlock{container: block, line: logical.number})
		case "END":
			if len(stack) == 0 {
				return nil, NewStructuralError("END without matching BEGIN", map[string]any{
					"line":    logical.number,
					"content": logical.text,
				})
			}
			current := stack[len(stack)-1]
			if !strings.EqualFold(current.container.Name, contentLine.Value) {
				return nil, NewStructuralError("mismatched END block", map[string]any{
					"line":     logical.number,
					"expected": current.container.Name,
					"got":      strings.ToUpper(contentLine.Value),
				})
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				topLevel = append(topLevel, current.container)
			} else {
				appendNode(current.container)
			}
		default:
			if len(stack) == 0 {
				return nil, NewStructuralError("content line outside any BEGIN block", map[string]any{
					"line":    logical.number,
					"content": logical.text,
				})
			}
			appendNode(contentLine)
		}
	}

	if len(stack) != 0 {
		unterminated := stack[len(stack)-1]
		return nil, NewStructuralError("unterminated BEGIN block", map[string]any{
			"name": unterminated.container.Name,
			"line": unterminated.line,
		})
	}

	return topLevel, nil
}

type logicalLine struct {
	text   string
	number int // physical line number where the logical line started
}

// Merge folded physical lines: a line starting with a single space or tab
// continues the previous one with that first character stripped.
func unfoldLines(lines []string) []logicalLine {
	var merged []logicalLine
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if len(merged) > 0 && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			merged[len(merged)-1].text += line[1:]
			continue
		}
		merged = append(merged, logicalLine{text: line, number: i + 1})
	}
	return merged
}

// Split one logical line into name, parameters, and value. The value starts
// at the first colon outside of double quotes; parameters are separated by
// unquoted semicolons.
func parseContentLine(line string) (*ContentLine, error) {
	nameEnd := -1
	inQuotes := false
	for i, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if r == ':' && !inQuotes {
			nameEnd = i
			break
		}
	}
	if nameEnd < 0 {
		return nil, NewStructuralError("content line has no ':' separator", map[string]any{
			"content": line,
		})
	}

	head := line[:nameEnd]
	value := line[nameEnd+1:]

	segments := splitUnquoted(head, ';')
	if segments[0] == "" {
		return nil, NewStructuralError("content line has an empty name", map[string]any{
			"content": line,
		})
	}

	contentLine := &ContentLine{
		Name:  strings.ToUpper(strings.TrimSpace(segments[0])),
		Value: unescapeValue(value),
	}
	for _, segment := range segments[1:] {
		paramName, rawValues, found := strings.Cut(segment, "=")
		if !found {
			return nil, NewStructuralError("parameter without '='", map[string]any{
				"content": line,
				"param":   segment,
			})
		}
		values := splitUnquoted(rawValues, ',')
		for i, v := range values {
			values[i] = strings.Trim(v, `"`)
		}
		contentLine.Params = append(contentLine.Params, Param{
			Name:   strings.ToUpper(strings.TrimSpace(paramName)),
			Values: values,
		})
	}
	return contentLine, nil
}

// Split on sep, ignoring separators inside double quotes.
func splitUnquoted(s string, sep rune) []string {
	var parts []string
	var sb strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			sb.WriteRune(r)
		case r == sep && !inQuotes:
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	parts = append(parts, sb.String())
	return parts
}

// Undo the text escaping applied to values: \\ \; \, \n \N.
func unescapeValue(value string) string {
	if !strings.Contains(value, "\\") {
		return value
	}
	var sb strings.Builder
	sb.Grow(len(value))
	escaped := false
	for _, r := range value {
		if escaped {
			switch r {
			case 'n', 'N':
				sb.WriteByte('\n')
			case '\\', ';', ',':
				sb.WriteRune(r)
			default:
				// unknown escape, keep it verbatim
				sb.WriteByte('\\')
				sb.WriteRune(r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		sb.WriteRune(r)
	}
	if escaped {
		sb.WriteByte('\\')
	}
	return sb.String()
}
