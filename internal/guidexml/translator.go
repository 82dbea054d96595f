// Package guidexml translates doctree documents into GuideXML sections.
package guidexml

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/dgallion1/guidexml/internal/doctree"
)

// ErrNoDefaultTag is returned when a kind routed through the default
// handler has no entry in the tag table.
var ErrNoDefaultTag = errors.New("no default tag mapping")

// Action tells the walker whether to descend into a node's children.
type Action int

const (
	Continue Action = iota
	SkipChildren
)

func (a Action) String() string {
	if a == SkipChildren {
		return "skip-children"
	}
	return "continue"
}

type (
	enterFunc func(*state, *doctree.Node) (Action, error)
	leaveFunc func(*state, *doctree.Node) error
)

type routeKind int

const (
	routeNone routeKind = iota
	routeDefault
	routeCustom
)

type route struct {
	kind  routeKind
	enter enterFunc
	leave leaveFunc
}

// defaultTags maps node kinds without dedicated handling to the GuideXML
// tag wrapped around their content.
var defaultTags = map[string]string{
	doctree.KindRubric:         "b",
	doctree.KindLiteralBlock:   "pre",
	doctree.KindParagraph:      "p",
	doctree.KindSubtitle:       "h2",
	doctree.KindBulletList:     "ul",
	doctree.KindEnumeratedList: "ol",
	doctree.KindListItem:       "li",
}

// customRoutes are the node kinds with dedicated enter/leave handlers.
var customRoutes = map[string]route{
	doctree.KindDocument:          {enter: (*state).enterDocument, leave: (*state).leaveDocument},
	doctree.KindSection:           {enter: (*state).enterSection, leave: (*state).leaveSection},
	doctree.KindText:              {enter: (*state).enterText},
	doctree.KindImage:             {enter: (*state).enterImage},
	doctree.KindNote:              {enter: (*state).enterNote},
	doctree.KindComment:           {enter: skip},
	doctree.KindTable:             {enter: (*state).enterTable},
	doctree.KindDesc:              {enter: (*state).enterDesc, leave: (*state).leaveDesc},
	doctree.KindDescName:          {enter: (*state).enterDescName},
	doctree.KindDescAddname:       {enter: skip},
	doctree.KindDescParameterList: {enter: (*state).enterParamList, leave: (*state).leaveParamList},
	doctree.KindDescParameter:     {enter: (*state).enterParam},
	doctree.KindDescContent:       {enter: (*state).enterDescContent},
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(t *Translator) { t.log = log }
}

// WithTags adds or overrides default tag mappings. Every added kind is
// routed through the default handler unless it has a dedicated one.
func WithTags(tags map[string]string) Option {
	return func(t *Translator) {
		for kind, tag := range tags {
			t.tags[kind] = tag
		}
	}
}

// WithDefaultRoute routes kinds through the default handler. A routed
// kind missing from the tag table fails translation with ErrNoDefaultTag.
func WithDefaultRoute(kinds ...string) Option {
	return func(t *Translator) { t.extra = append(t.extra, kinds...) }
}

// Translator converts document trees to GuideXML. Its tables are built
// once and only read afterwards, so one Translator may serve concurrent
// Translate calls.
type Translator struct {
	routes map[string]route
	tags   map[string]string
	extra  []string
	log    *slog.Logger
}

// NewTranslator builds the dispatch table.
func NewTranslator(opts ...Option) *Translator {
	t := &Translator{
		tags: maps.Clone(defaultTags),
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.routes = make(map[string]route, len(customRoutes)+len(t.tags)+len(t.extra))
	for kind := range t.tags {
		t.routes[kind] = route{kind: routeDefault}
	}
	for _, kind := range t.extra {
		t.routes[kind] = route{kind: routeDefault}
	}
	for kind, r := range customRoutes {
		r.kind = routeCustom
		t.routes[kind] = r
	}
	return t
}

// Translate walks tree once and returns one Record per document node.
// Content outside any document node is collected in a record with an
// empty source.
func (t *Translator) Translate(tree *doctree.Node) ([]*Record, error) {
	if tree == nil {
		return nil, nil
	}
	st := &state{tags: t.tags, log: t.log}
	if err := t.walk(st, tree); err != nil {
		return nil, err
	}
	if st.record != nil {
		st.records = append(st.records, st.record)
	}
	return st.records, nil
}

func (t *Translator) walk(st *state, n *doctree.Node) error {
	r := t.routes[n.Kind]

	var (
		action Action
		err    error
	)
	switch r.kind {
	case routeDefault:
		err = st.openDefault(n)
	case routeCustom:
		action, err = r.enter(st, n)
	}
	if err != nil {
		return err
	}
	if action == SkipChildren {
		return nil
	}

	for _, c := range n.Children {
		if err := t.walk(st, c); err != nil {
			return err
		}
	}

	switch r.kind {
	case routeDefault:
		return st.closeDefault(n)
	case routeCustom:
		if r.leave != nil {
			return r.leave(st, n)
		}
	}
	return nil
}

func skip(*state, *doctree.Node) (Action, error) {
	return SkipChildren, nil
}

// state is the mutable context of a single Translate call.
type state struct {
	tags    map[string]string
	log     *slog.Logger
	records []*Record
	record  *Record
	section *Section
	sigs    []*signature
	outer   []docFrame
}

// docFrame holds the enclosing document's position while a nested
// document is translated.
type docFrame struct {
	record  *Record
	section *Section
}

func (s *state) emit(block string) {
	if s.section == nil {
		s.log.Debug("dropping block outside any section", "block_len", len(block))
		return
	}
	s.section.appendBlock(block)
}

func (s *state) currentRecord() *Record {
	if s.record == nil {
		s.record = &Record{}
	}
	return s.record
}

func (s *state) currentSig() *signature {
	if len(s.sigs) == 0 {
		return nil
	}
	return s.sigs[len(s.sigs)-1]
}

func (s *state) openDefault(n *doctree.Node) error {
	tag, ok := s.tags[n.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoDefaultTag, n.Kind)
	}
	s.emit("<" + tag + ">")
	return nil
}

func (s *state) closeDefault(n *doctree.Node) error {
	tag, ok := s.tags[n.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoDefaultTag, n.Kind)
	}
	s.emit("</" + tag + ">")
	return nil
}

func (s *state) enterDocument(n *doctree.Node) (Action, error) {
	s.outer = append(s.outer, docFrame{record: s.record, section: s.section})
	s.record = &Record{Source: n.Attr("source"), Sections: []*Section{}}
	s.section = nil
	return Continue, nil
}

func (s *state) leaveDocument(*doctree.Node) error {
	s.records = append(s.records, s.currentRecord())
	top := s.outer[len(s.outer)-1]
	s.outer = s.outer[:len(s.outer)-1]
	s.record = top.record
	s.section = top.section
	return nil
}

func (s *state) enterSection(*doctree.Node) (Action, error) {
	s.section = newSection(s.section)
	return Continue, nil
}

func (s *state) leaveSection(*doctree.Node) error {
	closed := s.section
	if closed == nil {
		return nil
	}
	if closed.Parent == nil {
		rec := s.currentRecord()
		rec.Sections = append(rec.Sections, closed)
	}
	s.section = closed.Parent
	return nil
}

func (s *state) enterText(n *doctree.Node) (Action, error) {
	if s.section == nil {
		return SkipChildren, nil
	}
	// Title text never becomes body content. Only the first title seen
	// in a section names it.
	if title := n.Ancestor(doctree.KindTitle, doctree.KindSection, doctree.KindDocument); title != nil {
		s.section.setTitle(doctree.EscapeText(title.AsText()))
		return Continue, nil
	}
	// Signature text is consumed by the descriptor handlers.
	if s.currentSig() != nil {
		return Continue, nil
	}
	s.section.appendBlock(n.Markup())
	return Continue, nil
}

func (s *state) enterImage(n *doctree.Node) (Action, error) {
	linked := n.WithAttr("link", n.Attr("uri"))
	s.emit(Remap(doctree.KindImage, linked.Markup()))
	return Continue, nil
}

func (s *state) enterNote(n *doctree.Node) (Action, error) {
	s.emit(Remap(doctree.KindParagraph, n.Markup()))
	return SkipChildren, nil
}

func (s *state) enterTable(n *doctree.Node) (Action, error) {
	s.emit(assembleTable(n))
	return SkipChildren, nil
}

func descType(n *doctree.Node) string {
	if t := n.Attr("desctype"); t != "" {
		return t
	}
	return n.Attr("objtype")
}

func (s *state) enterDesc(n *doctree.Node) (Action, error) {
	if descType(n) != "function" {
		return SkipChildren, nil
	}
	s.sigs = append(s.sigs, &signature{})
	return Continue, nil
}

func (s *state) leaveDesc(*doctree.Node) error {
	sig := s.currentSig()
	if sig == nil {
		return nil
	}
	s.sigs = s.sigs[:len(s.sigs)-1]
	s.emit(sig.markup())
	return nil
}

func (s *state) enterDescName(n *doctree.Node) (Action, error) {
	sig := s.currentSig()
	if sig == nil {
		return SkipChildren, nil
	}
	var pkg string
	if n.Parent != nil {
		if prefix := n.Parent.Child(doctree.KindDescAddname); prefix != nil {
			pkg = strings.TrimSpace(Remap(doctree.KindDescAddname, prefix.Markup()))
		}
	}
	name := strings.TrimSpace(Remap(doctree.KindDescName, n.Markup()))
	sig.open(pkg + name)
	return SkipChildren, nil
}

func (s *state) enterParamList(*doctree.Node) (Action, error) {
	if sig := s.currentSig(); sig != nil {
		sig.openParams()
	}
	return Continue, nil
}

func (s *state) leaveParamList(*doctree.Node) error {
	if sig := s.currentSig(); sig != nil {
		sig.closeParams()
	}
	return nil
}

func (s *state) enterParam(n *doctree.Node) (Action, error) {
	if sig := s.currentSig(); sig != nil {
		sig.addParam(strings.TrimSpace(Remap(doctree.KindDescParameter, n.Markup())))
	}
	return SkipChildren, nil
}

func (s *state) enterDescContent(n *doctree.Node) (Action, error) {
	if sig := s.currentSig(); sig != nil {
		sig.describe(n.AsText())
	}
	return SkipChildren, nil
}
