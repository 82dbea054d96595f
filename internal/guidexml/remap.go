package guidexml

import (
	"regexp"
	"strings"

	"github.com/dgallion1/guidexml/internal/doctree"
)

// remapRule rewrites the open/close tags a renderer emits for one source
// kind. An empty target removes the matched tags altogether.
type remapRule struct {
	pattern *regexp.Regexp
	target  string
}

// tagRule matches "<kind ...>", "<kind .../>" and "</kind>". Text content
// is escaped by the renderer, so a bare '<' only ever opens a tag.
func tagRule(kind, target string) remapRule {
	return remapRule{
		pattern: regexp.MustCompile(`(</?)` + regexp.QuoteMeta(kind) + `((?:\s[^<>]*)?/?)>`),
		target:  target,
	}
}

// anyTag matches every tag in a rendered fragment; group 1 marks a close
// tag and group 2 a self-closing one.
var anyTag = regexp.MustCompile(`<(/?)[^<>]*?(/?)>`)

var remapRules = map[string]remapRule{
	doctree.KindParagraph:     tagRule(doctree.KindParagraph, "p"),
	doctree.KindImage:         tagRule(doctree.KindImage, "figure"),
	doctree.KindStrong:        tagRule(doctree.KindStrong, "b"),
	doctree.KindEmphasis:      tagRule(doctree.KindEmphasis, "e"),
	doctree.KindRow:           tagRule(doctree.KindRow, "tr"),
	doctree.KindEntry:         tagRule(doctree.KindEntry, "ti"),
	doctree.KindDescAddname:   tagRule(doctree.KindDescAddname, ""),
	doctree.KindDescName:      tagRule(doctree.KindDescName, ""),
	doctree.KindDescParameter: tagRule(doctree.KindDescParameter, ""),
	doctree.KindTGroup:        tagRule(doctree.KindTGroup, ""),
	doctree.KindTHead:         tagRule(doctree.KindTHead, ""),
}

// Remap rewrites the tags of kind in a rendered fragment into the GuideXML
// vocabulary. Fragments of kinds without a rule are returned unchanged.
//
// The newline the renderer writes after a matched tag is dropped along
// with the indentation of the following line. Only as many tabs as the
// renderer wrote at that depth are taken, so text starting with a tab
// keeps it.
func Remap(kind, markup string) string {
	rule, ok := remapRules[kind]
	if !ok {
		return markup
	}
	matches := rule.pattern.FindAllStringSubmatchIndex(markup, -1)
	if len(matches) == 0 {
		return markup
	}
	indents := nextIndents(markup)

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(markup[last:m[0]])
		if rule.target != "" {
			b.WriteString(markup[m[2]:m[3]])
			b.WriteString(rule.target)
			b.WriteString(markup[m[4]:m[5]])
			b.WriteByte('>')
		}
		last = skipIndent(markup, m[1], indents[m[0]])
	}
	b.WriteString(markup[last:])
	return b.String()
}

// nextIndents maps the offset of each tag to the indentation depth the
// renderer uses on the line after it: one deeper than the element after
// an open tag, the element's own depth after a close or empty tag.
func nextIndents(markup string) map[int]int {
	indents := make(map[int]int)
	depth := 0
	for _, m := range anyTag.FindAllStringSubmatchIndex(markup, -1) {
		switch {
		case m[3] > m[2]:
			depth--
			indents[m[0]] = depth
		case m[5] > m[4]:
			indents[m[0]] = depth
		default:
			depth++
			indents[m[0]] = depth
		}
	}
	return indents
}

// skipIndent steps over a newline at pos and at most limit tabs after it.
func skipIndent(s string, pos, limit int) int {
	if pos >= len(s) || s[pos] != '\n' {
		return pos
	}
	pos++
	for i := 0; i < limit && pos < len(s) && s[pos] == '\t'; i++ {
		pos++
	}
	return pos
}
