// Package editor renders split modules into a live page tree for in place
// editing: each module gets a host region with an overlay, listeners are
// tracked per module and released on unmount, text modules are edited by a
// small state machine which commits sanitized markup back to the module list.
package editor

import (
	"errors"
	"sync"

	"golang.org/x/net/html"

	"pagemaker/dom"
)

type EventType string

const (
	EventClick      EventType = "click"
	EventDblClick   EventType = "dblclick"
	EventMouseEnter EventType = "mouseenter"
	EventMouseLeave EventType = "mouseleave"
	EventKeyDown    EventType = "keydown"
	EventFocus      EventType = "focus"
	EventBlur       EventType = "blur"
)

// bubbles reports whether event propagates to ancestors of its target.
func (t EventType) bubbles() bool {
	switch t {
	case EventFocus, EventBlur, EventMouseEnter, EventMouseLeave:
		return false
	}
	return true
}

// Event is delivered to listeners of target and, for bubbling types, of its
// ancestors.
type Event struct {
	Type   EventType
	Target *html.Node
	// Key is set for keydown: "Enter", "Escape" or character.
	Key  string
	Ctrl bool
	Meta bool
	// RelatedTarget is node receiving focus for blur and node losing it for
	// focus.
	RelatedTarget *html.Node

	defaultPrevented bool
	stopped          bool
}

func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

func (e *Event) StopPropagation() {
	e.stopped = true
}

// Modifier reports whether command modifier (Ctrl or Meta) is held.
func (e *Event) Modifier() bool {
	return e.Ctrl || e.Meta
}

type Handler func(*Event)

// Disposer removes registered listener. Calling it second time returns
// ErrListenerRemoved.
type Disposer func() error

var ErrListenerRemoved = errors.New("listener already removed")

type listener struct {
	id  uint64
	typ EventType
	h   Handler
}

// Selection is a range inside single node. For text nodes offsets are byte
// positions in node data, for elements they are child indexes.
type Selection struct {
	Node  *html.Node
	Start int
	End   int
}

// Collapsed reports whether selection is a caret.
func (s Selection) Collapsed() bool {
	return s.Node == nil || s.Start == s.End
}

// Document is in-memory page tree with listeners attached to its nodes,
// focus and selection tracking. Handlers are invoked without internal lock
// held so they may register or dispose listeners.
type Document struct {
	mu        sync.Mutex
	body      *html.Node
	listeners map[*html.Node][]listener
	seq       uint64
	active    *html.Node
	selection Selection
}

// NewDocument parses markup into document body.
func NewDocument(markup string) (*Document, error) {
	body, err := dom.Parse(markup)
	if err != nil {
		return nil, err
	}
	return &Document{body: body, listeners: make(map[*html.Node][]listener)}, nil
}

func (d *Document) Body() *html.Node {
	return d.body
}

// GetElementByID returns first element with id attribute, nil when there is
// none.
func (d *Document) GetElementByID(id string) *html.Node {
	return find(d.body, func(n *html.Node) bool {
		return n.Type == html.ElementNode && dom.Attr(n, "id") == id
	})
}

// Contains reports whether n is attached to document.
func (d *Document) Contains(n *html.Node) bool {
	return contains(d.body, n)
}

// AddEventListener registers handler on node.
func (d *Document) AddEventListener(n *html.Node, typ EventType, h Handler) Disposer {
	d.mu.Lock()
	d.seq++
	id := d.seq
	d.listeners[n] = append(d.listeners[n], listener{id: id, typ: typ, h: h})
	d.mu.Unlock()

	return func() error {
		d.mu.Lock()
		defer d.mu.Unlock()
		ls := d.listeners[n]
		for i, l := range ls {
			if l.id == id {
				ls = append(ls[:i:i], ls[i+1:]...)
				if len(ls) == 0 {
					delete(d.listeners, n)
				} else {
					d.listeners[n] = ls
				}
				return nil
			}
		}
		return ErrListenerRemoved
	}
}

// ListenerCount returns number of listeners registered on n and its
// descendants.
func (d *Document) ListenerCount(n *html.Node) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for node, ls := range d.listeners {
		if contains(n, node) {
			count += len(ls)
		}
	}
	return count
}

// handlers takes snapshot of node listeners for the event type.
func (d *Document) handlers(n *html.Node, typ EventType) []Handler {
	d.mu.Lock()
	defer d.mu.Unlock()
	var hs []Handler
	for _, l := range d.listeners[n] {
		if l.typ == typ {
			hs = append(hs, l.h)
		}
	}
	return hs
}

// Dispatch delivers event to its target and then up the ancestor chain for
// bubbling types until propagation is stopped.
func (d *Document) Dispatch(ev *Event) {
	for n := ev.Target; n != nil; n = n.Parent {
		for _, h := range d.handlers(n, ev.Type) {
			h(ev)
		}
		if ev.stopped || !ev.Type.bubbles() {
			return
		}
	}
}

// Click is a convenience for dispatching click on node.
func (d *Document) Click(n *html.Node, ctrl bool) *Event {
	ev := &Event{Type: EventClick, Target: n, Ctrl: ctrl}
	d.Dispatch(ev)
	return ev
}

// KeyDown dispatches key press to focused element.
func (d *Document) KeyDown(key string, ctrl bool) *Event {
	target := d.ActiveElement()
	if target == nil {
		target = d.body
	}
	ev := &Event{Type: EventKeyDown, Target: target, Key: key, Ctrl: ctrl}
	d.Dispatch(ev)
	return ev
}

func (d *Document) ActiveElement() *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Focus moves focus to n, previous focused element receives blur first.
func (d *Document) Focus(n *html.Node) {
	d.mu.Lock()
	prev := d.active
	if prev == n {
		d.mu.Unlock()
		return
	}
	d.active = n
	d.mu.Unlock()

	if prev != nil {
		d.Dispatch(&Event{Type: EventBlur, Target: prev, RelatedTarget: n})
	}
	if n != nil {
		d.Dispatch(&Event{Type: EventFocus, Target: n, RelatedTarget: prev})
	}
}

// Blur removes focus from active element.
func (d *Document) Blur() {
	d.Focus(nil)
}

func (d *Document) Selection() Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selection
}

// Select sets selection, offsets are clamped to node size and ordered.
func (d *Document) Select(n *html.Node, start, end int) {
	if start > end {
		start, end = end, start
	}
	size := nodeSize(n)
	start, end = max(0, min(start, size)), max(0, min(end, size))
	d.mu.Lock()
	d.selection = Selection{Node: n, Start: start, End: end}
	d.mu.Unlock()
}

// SelectText selects whole data of text node.
func (d *Document) SelectText(n *html.Node) {
	d.Select(n, 0, nodeSize(n))
}

// CaretAtEnd collapses selection at the end of element content.
func (d *Document) CaretAtEnd(n *html.Node) {
	if last := lastText(n); last != nil {
		d.Select(last, len(last.Data), len(last.Data))
		return
	}
	size := nodeSize(n)
	d.Select(n, size, size)
}

func nodeSize(n *html.Node) int {
	if n == nil {
		return 0
	}
	if n.Type == html.TextNode {
		return len(n.Data)
	}
	return len(dom.Children(n))
}

func lastText(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.TextNode {
			return c
		}
		if t := lastText(c); t != nil {
			return t
		}
	}
	return nil
}

// contains reports whether n is root or its descendant.
func contains(root, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

func find(root *html.Node, match func(*html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := find(c, match); n != nil {
			return n
		}
	}
	return nil
}

// closest returns nearest ancestor-or-self of n below stop which is element
// with one of the names.
func closest(n, stop *html.Node, names ...string) *html.Node {
	for ; n != nil && n != stop; n = n.Parent {
		if dom.IsElement(n, names...) {
			return n
		}
	}
	return nil
}
