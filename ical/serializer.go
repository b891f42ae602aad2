package ical

import (
	"strings"
	"unicode/utf8"
)

// Logical lines longer than this many octets are folded on output.
const foldWidth = 75

// Render a container tree back into iCalendar text: CRLF line endings,
// escaped values, logical lines folded at 75 octets with a single-space
// continuation. The inverse of ParseString for any parsed container.
func Serialize(container *Container) string {
	var sb strings.Builder
	writer := foldWriter(&sb)
	serializeContainer(container, writer)
	return sb.String()
}

func serializeContainer(container *Container, writer func(string)) {
	writer("BEGIN:" + container.Name)
	for _, item := range container.Items {
		switch node := item.(type) {
		case *ContentLine:
			writer(renderContentLine(node))
		case *Container:
			serializeContainer(node, writer)
		}
	}
	writer("END:" + container.Name)
}

// Render one logical line, without folding.
func renderContentLine(line *ContentLine) string {
	var sb strings.Builder
	sb.WriteString(line.Name)
	for _, param := range line.Params {
		sb.WriteByte(';')
		sb.WriteString(param.Name)
		sb.WriteByte('=')
		for i, value := range param.Values {
			if i > 0 {
				sb.WriteByte(',')
			}
			if strings.ContainsAny(value, ":;,") {
				sb.WriteByte('"')
				sb.WriteString(value)
				sb.WriteByte('"')
			} else {
				sb.WriteString(value)
			}
		}
	}
	sb.WriteByte(':')
	sb.WriteString(escapeValue(line.Value))
	return sb.String()
}

// Wrap a string builder into a writer that folds each logical line at
// foldWidth octets, never splitting inside a UTF-8 sequence, and terminates
// every physical line with CRLF.
func foldWriter(sb *strings.Builder) func(string) {
	return func(logical string) {
		budget := foldWidth
		for len(logical) > budget {
			cut := budget
			// back up to a rune boundary
			for cut > 0 && !utf8.RuneStart(logical[cut]) {
				cut--
			}
			sb.WriteString(logical[:cut])
			sb.WriteString("\r\n ")
			logical = logical[cut:]
			// continuation lines already spend one octet on the
			// leading space
			budget = foldWidth - 1
		}
		sb.WriteString(logical)
		sb.WriteString("\r\n")
	}
}

// Apply the text escaping required in values: \\ \; \, and newline.
func escapeValue(value string) string {
	if !strings.ContainsAny(value, "\\;,\n") {
		return value
	}
	var sb strings.Builder
	sb.Grow(len(value) + 8)
	for _, r := range value {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case ';':
			sb.WriteString(`\;`)
		case ',':
			sb.WriteString(`\,`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
