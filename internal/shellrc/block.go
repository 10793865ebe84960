package shellrc

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker lines delimiting the machine-owned block.
const (
	StartMarker = "# >>> ccprof managed aliases >>>"
	EndMarker   = "# <<< ccprof managed aliases <<<"
)

// managedLine is the only shape accepted inside the block. Anything else
// there is dropped on the next rewrite.
var managedLine = regexp.MustCompile(`^alias ([A-Za-z][A-Za-z0-9_-]*)='([^']*)'$`)

// document is a startup file split around its managed block. Offsets are
// byte positions in content; they are meaningless when hasBlock is false.
type document struct {
	content  string
	hasBlock bool

	startBegin int // first byte of the start marker line
	startEnd   int // first byte after the start marker line
	endBegin   int // first byte of the end marker line
	endEnd     int // first byte after the end marker line
}

// parseDocument locates the managed block: the first end marker that has a
// start marker before it, paired with the closest such start marker. Stray
// or unpaired markers stay part of the surrounding user content.
func parseDocument(content string) document {
	doc := document{content: content}

	lastStart, lastStartEnd := -1, -1
	offset := 0
	for offset < len(content) {
		lineEnd := strings.IndexByte(content[offset:], '\n')
		next := len(content)
		if lineEnd >= 0 {
			next = offset + lineEnd + 1
		}
		line := strings.TrimSpace(content[offset:next])

		switch line {
		case StartMarker:
			lastStart, lastStartEnd = offset, next
		case EndMarker:
			if lastStart >= 0 {
				doc.hasBlock = true
				doc.startBegin, doc.startEnd = lastStart, lastStartEnd
				doc.endBegin, doc.endEnd = offset, next
				return doc
			}
		}
		offset = next
	}
	return doc
}

func (d document) interior() string {
	if !d.hasBlock {
		return ""
	}
	return d.content[d.startEnd:d.endBegin]
}

// before and after are the user-owned regions around the whole block,
// markers excluded. Without a block, the whole file is before.
func (d document) before() string {
	if !d.hasBlock {
		return d.content
	}
	return d.content[:d.startBegin]
}

func (d document) after() string {
	if !d.hasBlock {
		return ""
	}
	return d.content[d.endEnd:]
}

// withInterior returns the file with the block body replaced, leaving every
// byte outside the markers untouched.
func (d document) withInterior(body string) string {
	return d.content[:d.startEnd] + body + d.content[d.endBegin:]
}

// withoutBlock drops the markers and body. When the block ends the file, as
// appendBlock leaves it, the blank line appendBlock put before it goes too.
// A block with content after it leaves the surrounding text byte-for-byte.
func (d document) withoutBlock() string {
	before := d.before()
	if d.after() == "" && strings.HasSuffix(before, "\n\n") {
		before = before[:len(before)-1]
	}
	return before + d.after()
}

// appendBlock adds a new block at the end of content, preceded by exactly
// one blank line.
func appendBlock(content, body string) string {
	base := strings.TrimRight(content, "\n")
	if base != "" {
		base += "\n\n"
	}
	return base + StartMarker + "\n" + body + EndMarker + "\n"
}

// parseManaged reads alias entries from the block body in order. Later
// duplicates of a name are ignored.
func parseManaged(body string) []entry {
	var entries []entry
	seen := make(map[string]bool)
	for _, line := range strings.Split(body, "\n") {
		m := managedLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		entries = append(entries, entry{name: m[1], command: m[2]})
	}
	return entries
}

type entry struct {
	name    string
	command string
}

func renderManaged(entries []entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "alias %s='%s'\n", e.name, e.command)
	}
	return b.String()
}
