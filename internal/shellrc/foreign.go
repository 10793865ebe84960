package shellrc

import (
	"regexp"
	"strings"
)

// foreignLine matches any single- or double-quoted alias definition.
var foreignLine = regexp.MustCompile(`(?m)^[ \t]*alias[ \t]+([^\s=]+)=(?:'([^'\n]*)'|"([^"\n]*)")`)

// launcherCommand recognizes commands that start a Claude launcher:
// "claude" itself or a "claude-<profile>" script.
var launcherCommand = regexp.MustCompile(`^claude(?:-[A-Za-z0-9_-]+)?(?:\s|$)`)

// scanForeign finds launcher aliases in user-owned text. Names are not
// assumed to be unique.
func scanForeign(text string) []entry {
	var entries []entry
	for _, m := range foreignLine.FindAllStringSubmatch(text, -1) {
		command := m[2]
		if command == "" {
			command = m[3]
		}
		if !launcherCommand.MatchString(strings.TrimSpace(command)) {
			continue
		}
		entries = append(entries, entry{name: m[1], command: command})
	}
	return entries
}

// removeForeign deletes every standalone alias line defining name. Where a
// removal joins two blank-line runs, the joined run is cut back to a single
// blank line; runs elsewhere in text are left alone. It reports whether
// anything was removed; when nothing was, text is returned unchanged.
func removeForeign(text, name string) (string, bool) {
	re := regexp.MustCompile(`(?m)^[ \t]*alias[ \t]+` + regexp.QuoteMeta(name) +
		`=(?:'[^'\n]*'|"[^"\n]*")[ \t]*(?:#[^\n]*)?(?:\r?\n|$)`)
	matches := re.FindAllStringIndex(text, -1)
	if matches == nil {
		return text, false
	}

	out := ""
	prev := 0
	for i, m := range matches {
		out += text[prev:m[0]]
		prev = m[1]

		segEnd := len(text)
		if i+1 < len(matches) {
			segEnd = matches[i+1][0]
		}
		seg := text[prev:segEnd]
		lead := len(seg) - len(strings.TrimLeft(seg, "\n"))
		trail := len(out) - len(strings.TrimRight(out, "\n"))
		if excess := trail + lead - 2; excess > 0 {
			prev += min(lead, excess)
		}
	}
	return out + text[prev:], true
}
