package editor

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagemaker/common"
	"pagemaker/dom"
	"pagemaker/i18n"
	"pagemaker/page"
	"pagemaker/sanitize"
)

var ErrContainerUnavailable = errors.New("editor container is not attached to document")

// Classes and attributes of rendered module hosts.
const (
	HostClass     = "pm-module-host"
	ContentClass  = "pm-module-content"
	OverlayClass  = "pm-module-overlay"
	SelectedClass = "pm-module-selected"
	HoverClass    = "pm-module-hover"
	EditingClass  = "pm-module-editing"
	AttrModuleID  = "data-module-id"
	AttrKind      = "data-module-kind"
)

type RenderOptions struct {
	// OnModuleUpdate receives module after its committed markup changed.
	OnModuleUpdate func(page.HTMLModule)
	OnModuleDelete func(id string)
	// OnModuleClick is called after selection changed.
	OnModuleClick    func(m page.HTMLModule, selected bool)
	OnModuleDblClick func(page.HTMLModule)
	// OnSourceRequest is called by overlay source button.
	OnSourceRequest func(page.HTMLModule)

	HideOverlay bool
	LinkTarget  common.LinkTarget
	Prompter    Prompter
	Toolbar     *html.Node
	Translate   i18n.Func
	Sanitizer   *sanitize.Sanitizer
}

// ModuleState is mounted editor. Every listener it registers is tracked in
// edit cleanups and released by Unmount, Rerender or DeleteModule.
type ModuleState struct {
	doc          *Document
	container    *html.Node
	list         *page.List
	opts         RenderOptions
	log          *zap.Logger
	hosts        map[string]*html.Node
	texts        map[string]*TextController
	selected     map[string]bool
	editCleanups *Cleanups
	mounted      bool
}

// MountEditor renders modules into container. Container must be attached to
// document.
func MountEditor(doc *Document, container *html.Node, modules []page.HTMLModule, opts RenderOptions, log *zap.Logger) (*ModuleState, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if doc == nil || container == nil || container.Type != html.ElementNode || !doc.Contains(container) {
		return nil, ErrContainerUnavailable
	}
	if opts.Translate == nil {
		opts.Translate = i18n.Default().Translator(i18n.Fallback.String())
	}
	if opts.Sanitizer == nil {
		opts.Sanitizer = sanitize.New(sanitize.DefaultOptions(), log)
	}

	s := &ModuleState{
		doc:          doc,
		container:    container,
		opts:         opts,
		log:          log.Named("editor"),
		editCleanups: NewCleanups(),
	}
	if err := s.render(modules); err != nil {
		return nil, err
	}
	s.log.Debug("Editor mounted", zap.Int("modules", s.list.Len()))
	return s, nil
}

// Ready reports whether editor is mounted.
func (s *ModuleState) Ready() bool {
	return s != nil && s.mounted
}

// EditCleanups exposes tracked listener disposers.
func (s *ModuleState) EditCleanups() *Cleanups {
	return s.editCleanups
}

// Modules returns current module list.
func (s *ModuleState) Modules() []page.HTMLModule {
	return s.list.Modules()
}

// Host returns rendered host element of module.
func (s *ModuleState) Host(id string) *html.Node {
	return s.hosts[id]
}

// Content returns region holding module markup.
func (s *ModuleState) Content(id string) *html.Node {
	if h := s.hosts[id]; h != nil {
		return contentRegion(h)
	}
	return nil
}

// TextController returns edit controller of text module.
func (s *ModuleState) TextController(id string) *TextController {
	return s.texts[id]
}

func (s *ModuleState) render(modules []page.HTMLModule) error {
	for c := s.container.FirstChild; c != nil; c = s.container.FirstChild {
		s.container.RemoveChild(c)
	}
	s.list = page.NewList(modules)
	s.hosts = make(map[string]*html.Node, s.list.Len())
	s.texts = make(map[string]*TextController)
	s.selected = make(map[string]bool)

	var err error
	for _, m := range s.list.Modules() {
		host, herr := s.renderHost(m)
		if herr != nil {
			err = multierr.Append(err, herr)
			continue
		}
		s.container.AppendChild(host)
	}
	s.mounted = true
	return err
}

// renderHost builds host for module and attaches its listeners.
func (s *ModuleState) renderHost(m page.HTMLModule) (*html.Node, error) {
	content, err := dom.Parse(m.HTML)
	if err != nil {
		return nil, fmt.Errorf("unable to render module %s: %w", m.ID, err)
	}
	dom.PromoteTableSections(content)
	region := dom.NewElement("div", html.Attribute{Key: "class", Val: ContentClass})
	dom.MoveChildren(region, content)

	host := dom.NewElement("div",
		html.Attribute{Key: "class", Val: HostClass},
		html.Attribute{Key: AttrModuleID, Val: m.ID},
		html.Attribute{Key: AttrKind, Val: m.Kind.String()},
	)
	host.AppendChild(region)
	s.hosts[m.ID] = host

	track := func(d Disposer) Disposer {
		return s.editCleanups.Add(m.ID, d)
	}
	id := m.ID

	track(s.doc.AddEventListener(host, EventClick, func(ev *Event) {
		s.toggleSelection(id, ev.Modifier())
	}))
	track(s.doc.AddEventListener(host, EventDblClick, func(*Event) {
		if cur, ok := s.list.Get(id); ok && s.opts.OnModuleDblClick != nil {
			s.opts.OnModuleDblClick(cur)
		}
	}))
	track(s.doc.AddEventListener(host, EventMouseEnter, func(*Event) {
		addClass(host, HoverClass)
	}))
	track(s.doc.AddEventListener(host, EventMouseLeave, func(*Event) {
		removeClass(host, HoverClass)
	}))

	if !s.opts.HideOverlay {
		host.AppendChild(s.overlay(m, track))
	}

	if m.Kind == page.KindText {
		s.texts[id] = NewTextController(s.doc, region, TextOptions{
			LinkTarget: s.opts.LinkTarget,
			Prompter:   s.opts.Prompter,
			Translate:  s.opts.Translate,
			Sanitizer:  s.opts.Sanitizer,
			Toolbar:    s.opts.Toolbar,
			Track:      track,
			OnCommit: func(c Commit) {
				removeClass(host, EditingClass)
				s.commitText(id, c)
			},
			OnCancel: func() {
				removeClass(host, EditingClass)
			},
		}, s.log)
		track(s.doc.AddEventListener(region, EventFocus, func(*Event) {
			addClass(host, EditingClass)
		}))
	}
	return host, nil
}

// overlay builds label and buttons shown over module.
func (s *ModuleState) overlay(m page.HTMLModule, track func(Disposer) Disposer) *html.Node {
	t := s.opts.Translate
	ov := dom.NewElement("div",
		html.Attribute{Key: "class", Val: OverlayClass},
		html.Attribute{Key: "contenteditable", Val: "false"},
	)
	label := dom.NewElement("span", html.Attribute{Key: "class", Val: "pm-module-label"})
	label.AppendChild(dom.NewText(t("kind."+m.Kind.String(), nil)))
	ov.AppendChild(label)

	button := func(class, text, title string, h Handler) {
		b := dom.NewElement("button",
			html.Attribute{Key: "type", Val: "button"},
			html.Attribute{Key: "class", Val: class},
			html.Attribute{Key: "title", Val: title},
		)
		b.AppendChild(dom.NewText(text))
		ov.AppendChild(b)
		track(s.doc.AddEventListener(b, EventClick, func(ev *Event) {
			ev.StopPropagation()
			h(ev)
		}))
	}
	id := m.ID
	button("pm-module-source", t("editor.source", nil), t("editor.source_title", nil), func(*Event) {
		if cur, ok := s.list.Get(id); ok && s.opts.OnSourceRequest != nil {
			s.opts.OnSourceRequest(cur)
		}
	})
	button("pm-module-delete", t("editor.delete", nil), t("editor.delete_title", nil), func(*Event) {
		if err := s.DeleteModule(id); err != nil {
			s.log.Warn("Unable to delete module", zap.String("id", id), zap.Error(err))
		}
	})
	return ov
}

func (s *ModuleState) toggleSelection(id string, multi bool) {
	switch {
	case multi:
		s.selected[id] = !s.selected[id]
	case s.selected[id] && len(s.selectedIDs()) == 1:
		s.selected[id] = false
	default:
		clear(s.selected)
		s.selected[id] = true
	}
	s.paintSelection()
	if cur, ok := s.list.Get(id); ok && s.opts.OnModuleClick != nil {
		s.opts.OnModuleClick(cur, s.selected[id])
	}
}

func (s *ModuleState) paintSelection() {
	for id, host := range s.hosts {
		if s.selected[id] {
			addClass(host, SelectedClass)
		} else {
			removeClass(host, SelectedClass)
		}
	}
}

func (s *ModuleState) selectedIDs() []string {
	var ids []string
	for _, id := range s.list.IDs() {
		if s.selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *ModuleState) commitText(id string, c Commit) {
	m, err := s.list.SetHTML(id, c.HTML)
	if err != nil {
		s.log.Warn("Committed module is gone", zap.String("id", id), zap.Error(err))
		return
	}
	if err := s.rerenderHost(m); err != nil {
		s.log.Warn("Unable to refresh module", zap.String("id", id), zap.Error(err))
	}
	if s.opts.OnModuleUpdate != nil {
		s.opts.OnModuleUpdate(m)
	}
}

// rerenderHost replaces module host releasing listeners of old one.
func (s *ModuleState) rerenderHost(m page.HTMLModule) error {
	old := s.hosts[m.ID]
	err := s.releaseModule(m.ID)
	host, herr := s.renderHost(m)
	if herr != nil {
		return multierr.Append(err, herr)
	}
	if old != nil && old.Parent != nil {
		old.Parent.InsertBefore(host, old)
		old.Parent.RemoveChild(old)
	} else {
		s.container.AppendChild(host)
	}
	if s.selected[m.ID] {
		addClass(host, SelectedClass)
	}
	return err
}

func (s *ModuleState) releaseModule(id string) error {
	var err error
	if tc := s.texts[id]; tc != nil {
		err = tc.Detach()
		delete(s.texts, id)
	}
	delete(s.hosts, id)
	return multierr.Append(err, s.editCleanups.Dispose(id))
}

// UpdateModuleContent replaces module markup, markup is sanitized first.
func (s *ModuleState) UpdateModuleContent(id, markup string) (page.HTMLModule, error) {
	if !s.mounted {
		return page.HTMLModule{}, ErrContainerUnavailable
	}
	m, err := s.list.SetHTML(id, s.opts.Sanitizer.Sanitize(markup))
	if err != nil {
		return page.HTMLModule{}, err
	}
	if err := s.rerenderHost(m); err != nil {
		return m, err
	}
	if s.opts.OnModuleUpdate != nil {
		s.opts.OnModuleUpdate(m)
	}
	return m, nil
}

// DeleteModule removes module with its host and listeners.
func (s *ModuleState) DeleteModule(id string) error {
	if !s.mounted {
		return ErrContainerUnavailable
	}
	if _, err := s.list.Delete(id); err != nil {
		return err
	}
	host := s.hosts[id]
	err := s.releaseModule(id)
	if host != nil {
		dom.Remove(host)
	}
	delete(s.selected, id)
	if s.opts.OnModuleDelete != nil {
		s.opts.OnModuleDelete(id)
	}
	return err
}

// Rerender replaces all modules.
func (s *ModuleState) Rerender(modules []page.HTMLModule) error {
	if !s.mounted {
		return ErrContainerUnavailable
	}
	err := s.release()
	return multierr.Append(err, s.render(modules))
}

func (s *ModuleState) release() error {
	var err error
	for id, tc := range s.texts {
		err = multierr.Append(err, tc.Detach())
		delete(s.texts, id)
	}
	return multierr.Append(err, s.editCleanups.DisposeAll())
}

// Unmount releases every listener and removes rendered hosts.
func (s *ModuleState) Unmount() error {
	if !s.mounted {
		return nil
	}
	err := s.release()
	for _, h := range s.hosts {
		dom.Remove(h)
	}
	clear(s.hosts)
	clear(s.selected)
	s.mounted = false
	s.log.Debug("Editor unmounted")
	return err
}

func (s *ModuleState) SelectAll() {
	for _, id := range s.list.IDs() {
		s.selected[id] = true
	}
	s.paintSelection()
}

func (s *ModuleState) ClearSelection() {
	clear(s.selected)
	s.paintSelection()
}

// SelectedModules returns selected modules in list order.
func (s *ModuleState) SelectedModules() []page.HTMLModule {
	var out []page.HTMLModule
	for _, id := range s.selectedIDs() {
		if m, ok := s.list.Get(id); ok {
			out = append(out, m)
		}
	}
	return out
}

// ExportSelected returns sanitized markup of selected modules, all modules
// when nothing is selected. Overlays are never part of output.
func (s *ModuleState) ExportSelected() string {
	modules := s.SelectedModules()
	if len(modules) == 0 {
		modules = s.list.Modules()
	}
	var b strings.Builder
	for _, m := range modules {
		b.WriteString(m.HTML)
	}
	return s.opts.Sanitizer.Sanitize(b.String())
}

func contentRegion(host *html.Node) *html.Node {
	for c := host.FirstChild; c != nil; c = c.NextSibling {
		if hasClass(c, ContentClass) {
			return c
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(dom.Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if !hasClass(n, class) {
		dom.SetAttr(n, "class", strings.TrimSpace(dom.Attr(n, "class")+" "+class))
	}
}

func removeClass(n *html.Node, class string) {
	fields := strings.Fields(dom.Attr(n, "class"))
	kept := fields[:0]
	for _, c := range fields {
		if c != class {
			kept = append(kept, c)
		}
	}
	dom.SetAttr(n, "class", strings.Join(kept, " "))
}
