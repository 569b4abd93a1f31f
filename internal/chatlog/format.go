package chatlog

import (
	"strconv"
	"strings"

	"github.com/john/chatter/internal/message"
)

// formatMessage renders one chat message into its output lines. The sender
// and body arguments are the include-server-policy renderings supplied by
// the manager; they fill the "with world" slots. Placeholders:
//
//	{0} formatted timestamp    {3} channel label
//	{1} sender (with world)    {4} body (with world)
//	{2} sender name only       {5} body without worlds
//
// The rendered line is then word-wrapped when wrapWidth is non-zero.
func formatMessage(msg *message.ChatMessage, sender, body, timeFormat, template string, wrapWidth, wrapIndent int) []string {
	fields := [6]string{
		msg.When.Format(timeFormat),
		sender,
		msg.Sender.Name,
		msg.Label,
		body,
		msg.Body.Render(false),
	}
	return wrapLine(expandTemplate(template, fields), wrapWidth, wrapIndent)
}

// expandTemplate substitutes {0}..{5} tokens. Anything that does not parse
// as an in-range index stays in the output verbatim, so a bad template
// degrades a field instead of halting logging.
func expandTemplate(template string, fields [6]string) string {
	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:open])
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest[open:])
			return b.String()
		}
		token := rest[open+1 : open+end]
		if n, err := strconv.Atoi(token); err == nil && n >= 0 && n < len(fields) {
			b.WriteString(fields[n])
		} else {
			b.WriteString(rest[open : open+end+1])
		}
		rest = rest[open+end+1:]
	}
}

// wrapLine greedily word-wraps line to width columns. Each break replaces
// one whitespace run; every other byte of the line is carried through
// unchanged, so interior runs of spaces survive wrapping. Continuation
// lines carry indent leading spaces, counted against the width. A single
// word longer than the width overflows intact.
func wrapLine(line string, width, indent int) []string {
	if width <= 0 || len(line) <= width {
		return []string{line}
	}

	pad := strings.Repeat(" ", indent)
	var lines []string
	rest := line
	prefix := ""
	for {
		if len(prefix)+len(rest) <= width {
			return append(lines, prefix+rest)
		}

		// Break at the last whitespace that keeps the chunk within
		// width; failing that, after the over-long word.
		limit := width - len(prefix)
		breakAt := -1
		for i := 1; i <= limit && i < len(rest); i++ {
			if isLineSpace(rest[i]) {
				breakAt = i
			}
		}
		if breakAt < 0 {
			for i := limit + 1; i < len(rest); i++ {
				if isLineSpace(rest[i]) {
					breakAt = i
					break
				}
			}
			if breakAt < 0 {
				return append(lines, prefix+rest)
			}
		}

		// The break consumes the whole whitespace run it lands in.
		for breakAt > 1 && isLineSpace(rest[breakAt-1]) {
			breakAt--
		}
		lines = append(lines, prefix+rest[:breakAt])
		next := breakAt
		for next < len(rest) && isLineSpace(rest[next]) {
			next++
		}
		rest = rest[next:]
		if rest == "" {
			return lines
		}
		prefix = pad
	}
}

func isLineSpace(b byte) bool {
	return b == ' ' || b == '\t'
}
