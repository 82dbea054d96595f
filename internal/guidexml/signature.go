package guidexml

import "strings"

const paramSep = ", "

var (
	angleEscaper   = strings.NewReplacer("<", "&lt;", ">", "&gt;")
	captionEscaper = strings.NewReplacer("'", "&apos;")
)

// signature accumulates the fragments of one function descriptor: the
// preformatted name and parameter list, then the description paragraphs.
type signature struct {
	head   []string
	body   []string
	opened bool
}

// open starts the <pre> block captioned with the qualified name.
func (s *signature) open(qualified string) {
	s.head = append(s.head, "<pre caption='", captionEscaper.Replace(qualified), "'>", qualified)
	s.opened = true
}

func (s *signature) openParams() {
	s.head = append(s.head, "(")
}

func (s *signature) addParam(param string) {
	s.head = append(s.head, param, paramSep)
}

func (s *signature) closeParams() {
	if n := len(s.head); n > 0 && s.head[n-1] == paramSep {
		s.head = s.head[:n-1]
	}
	s.head = append(s.head, ")")
}

func (s *signature) describe(text string) {
	s.body = append(s.body, "<p>", angleEscaper.Replace(text), "</p>")
}

// markup joins everything into a single block. A descriptor whose name
// was never seen still yields a well-formed, empty <pre>.
func (s *signature) markup() string {
	var b strings.Builder
	if !s.opened {
		b.WriteString("<pre caption=''>")
	}
	for _, f := range s.head {
		b.WriteString(f)
	}
	b.WriteString("</pre>")
	for _, f := range s.body {
		b.WriteString(f)
	}
	return b.String()
}
