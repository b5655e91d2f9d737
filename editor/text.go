package editor

import (
	"errors"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagemaker/common"
	"pagemaker/dom"
	"pagemaker/i18n"
	"pagemaker/sanitize"
)

var (
	ErrNotEditing     = errors.New("text region is not being edited")
	ErrEmptySelection = errors.New("no text is selected")
	ErrUnsafeLink     = errors.New("link address is not allowed")
)

type EditState int

const (
	Idle EditState = iota
	Editing
)

func (s EditState) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// DefaultLinkTarget opens links in top level browsing context, marketplace
// pages are shown inside frames.
const DefaultLinkTarget = common.LinkTargetTop

// Prompter asks user questions during link editing.
type Prompter interface {
	// PromptURL returns entered address, false when user cancelled.
	PromptURL(message string) (string, bool)
	Confirm(message string) bool
}

type TextOptions struct {
	LinkTarget common.LinkTarget
	Prompter   Prompter
	Translate  i18n.Func
	Sanitizer  *sanitize.Sanitizer
	// Toolbar receiving focus does not end editing.
	Toolbar  *html.Node
	OnCommit func(Commit)
	OnCancel func()
	// Track registers listener disposer with owner, returned disposer must
	// be used to release listener early.
	Track func(Disposer) Disposer
}

// TextController is Idle/Editing state machine of single text region.
// Activation makes region editable and focused, blur or Ctrl+S commits,
// Escape restores content as it was on activation.
type TextController struct {
	doc      *Document
	region   *html.Node
	opts     TextOptions
	log      *zap.Logger
	state    EditState
	snapshot string
	session  []Disposer
}

// NewTextController attaches activation listener to region.
func NewTextController(doc *Document, region *html.Node, opts TextOptions, log *zap.Logger) *TextController {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.LinkTarget == "" {
		opts.LinkTarget = DefaultLinkTarget
	}
	if opts.Translate == nil {
		opts.Translate = i18n.Default().Translator(i18n.Fallback.String())
	}
	if opts.Sanitizer == nil {
		opts.Sanitizer = sanitize.New(sanitize.DefaultOptions(), log)
	}
	if opts.Track == nil {
		opts.Track = func(d Disposer) Disposer { return d }
	}
	c := &TextController{doc: doc, region: region, opts: opts, log: log.Named("text")}
	opts.Track(doc.AddEventListener(region, EventClick, func(*Event) {
		if err := c.Activate(); err != nil {
			c.log.Warn("Unable to start editing", zap.Error(err))
		}
	}))
	return c
}

func (c *TextController) State() EditState {
	return c.state
}

func (c *TextController) Region() *html.Node {
	return c.region
}

// Activate starts editing, does nothing when already editing.
func (c *TextController) Activate() error {
	if c.state == Editing {
		return nil
	}
	if !c.doc.Contains(c.region) {
		return ErrContainerUnavailable
	}
	c.snapshot = dom.RenderChildren(c.region)
	dom.SetAttr(c.region, "contenteditable", "true")
	c.state = Editing
	c.session = append(c.session,
		c.opts.Track(c.doc.AddEventListener(c.region, EventKeyDown, c.onKeyDown)),
		c.opts.Track(c.doc.AddEventListener(c.region, EventBlur, c.onBlur)),
	)
	c.doc.Focus(c.region)
	c.doc.CaretAtEnd(c.region)
	c.log.Debug("Editing started")
	return nil
}

func (c *TextController) onKeyDown(ev *Event) {
	var err error
	switch {
	case ev.Key == "Enter" && !ev.Modifier():
		ev.PreventDefault()
		err = c.InsertLineBreak()
	case ev.Key == "Escape":
		ev.PreventDefault()
		err = c.Cancel()
	case ev.Modifier() && strings.EqualFold(ev.Key, "b"):
		ev.PreventDefault()
		err = c.ToggleBold()
	case ev.Modifier() && strings.EqualFold(ev.Key, "u"):
		ev.PreventDefault()
		err = c.ToggleUnderline()
	case ev.Modifier() && strings.EqualFold(ev.Key, "s"):
		ev.PreventDefault()
		err = c.Commit()
	}
	if err != nil && !errors.Is(err, ErrEmptySelection) {
		c.log.Warn("Key command failed", zap.String("key", ev.Key), zap.Error(err))
	}
}

func (c *TextController) onBlur(ev *Event) {
	if c.opts.Toolbar != nil && ev.RelatedTarget != nil && contains(c.opts.Toolbar, ev.RelatedTarget) {
		return
	}
	if err := c.Commit(); err != nil {
		c.log.Warn("Unable to commit on blur", zap.Error(err))
	}
}

// endSession removes keyboard and blur listeners before region loses focus
// so finishing edit never triggers second commit.
func (c *TextController) endSession() (err error) {
	for _, d := range c.session {
		err = multierr.Append(err, d())
	}
	c.session = nil
	dom.RemoveAttr(c.region, "contenteditable")
	c.state = Idle
	if c.doc.ActiveElement() == c.region {
		c.doc.Blur()
	}
	return err
}

// Commit finishes editing and reports normalized content.
func (c *TextController) Commit() error {
	if c.state != Editing {
		return ErrNotEditing
	}
	err := c.endSession()
	commit := NormalizeCommit(dom.RenderChildren(c.region), c.opts.Sanitizer)
	c.log.Debug("Editing committed", zap.Bool("empty", commit.IsEmpty()))
	if c.opts.OnCommit != nil {
		c.opts.OnCommit(commit)
	}
	return err
}

// Cancel finishes editing restoring content captured on activation.
func (c *TextController) Cancel() error {
	if c.state != Editing {
		return ErrNotEditing
	}
	err := c.endSession()
	restored, perr := dom.Parse(c.snapshot)
	if perr != nil {
		return multierr.Append(err, perr)
	}
	for ch := c.region.FirstChild; ch != nil; ch = c.region.FirstChild {
		c.region.RemoveChild(ch)
	}
	dom.MoveChildren(c.region, restored)
	c.log.Debug("Editing cancelled")
	if c.opts.OnCancel != nil {
		c.opts.OnCancel()
	}
	return err
}

// Detach ends editing without commit, used when region is going away.
func (c *TextController) Detach() error {
	if c.state != Editing {
		return nil
	}
	return c.endSession()
}

// selection returns current selection when it lies inside edited region.
func (c *TextController) selection() (Selection, error) {
	if c.state != Editing {
		return Selection{}, ErrNotEditing
	}
	sel := c.doc.Selection()
	if sel.Node == nil || !contains(c.region, sel.Node) {
		return Selection{}, ErrEmptySelection
	}
	return sel, nil
}

// InsertLineBreak replaces selection with <br> and puts caret after it.
func (c *TextController) InsertLineBreak() error {
	sel, err := c.selection()
	if err != nil {
		return err
	}
	br := dom.NewElement("br")
	if sel.Node.Type != html.TextNode {
		kids := dom.Children(sel.Node)
		if sel.Start < len(kids) {
			sel.Node.InsertBefore(br, kids[sel.Start])
		} else {
			sel.Node.AppendChild(br)
		}
		c.doc.Select(sel.Node, sel.Start+1, sel.Start+1)
		return nil
	}
	mid, after := splitText(sel.Node, sel.Start, sel.End)
	after.Parent.InsertBefore(br, after)
	dom.Remove(mid)
	c.doc.Select(after, 0, 0)
	return nil
}

func (c *TextController) ToggleBold() error {
	return c.toggle("b", "b", "strong")
}

func (c *TextController) ToggleUnderline() error {
	return c.toggle("u", "u")
}

// toggle removes formatting element enclosing selection or wraps selected
// text into new one.
func (c *TextController) toggle(tag string, names ...string) error {
	sel, err := c.selection()
	if err != nil {
		return err
	}
	if el := closest(sel.Node, c.region, names...); el != nil {
		dom.Unwrap(el)
		return nil
	}
	if sel.Collapsed() || sel.Node.Type != html.TextNode {
		return ErrEmptySelection
	}
	c.wrap(sel, dom.NewElement(tag))
	return nil
}

// wrap moves selected text into wrapper and selects it there.
func (c *TextController) wrap(sel Selection, wrapper *html.Node) {
	mid, _ := splitText(sel.Node, sel.Start, sel.End)
	dom.Wrap(mid, wrapper)
	c.doc.SelectText(mid)
}

// InsertLink links selected text. When selection is inside existing link
// user is offered to remove it instead.
func (c *TextController) InsertLink() error {
	sel, err := c.selection()
	if err != nil {
		return err
	}
	if a := closest(sel.Node, c.region, "a"); a != nil {
		if c.opts.Prompter != nil && c.opts.Prompter.Confirm(c.opts.Translate("editor.unlink_confirm", nil)) {
			dom.Unwrap(a)
		}
		return nil
	}
	if sel.Collapsed() || sel.Node.Type != html.TextNode || strings.TrimSpace(sel.Node.Data[sel.Start:sel.End]) == "" {
		return ErrEmptySelection
	}
	if c.opts.Prompter == nil {
		return ErrEmptySelection
	}
	href, ok := c.opts.Prompter.PromptURL(c.opts.Translate("editor.link_prompt", nil))
	if href = strings.TrimSpace(href); !ok || href == "" {
		return nil
	}
	if !sanitize.SafeURL(href) {
		return ErrUnsafeLink
	}
	c.wrap(sel, dom.NewElement("a",
		html.Attribute{Key: "href", Val: href},
		html.Attribute{Key: "target", Val: string(c.opts.LinkTarget)},
	))
	return nil
}

// splitText cuts [start:end) out of text node t. Selected part stays in t,
// returned after holds the rest, text before selection moves to new node.
// Both returned nodes are attached.
func splitText(t *html.Node, start, end int) (mid, after *html.Node) {
	data := t.Data
	if start > 0 {
		t.Parent.InsertBefore(dom.NewText(data[:start]), t)
	}
	after = dom.NewText(data[end:])
	if t.NextSibling != nil {
		t.Parent.InsertBefore(after, t.NextSibling)
	} else {
		t.Parent.AppendChild(after)
	}
	t.Data = data[start:end]
	return t, after
}
