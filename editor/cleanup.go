package editor

import (
	"go.uber.org/multierr"
)

type cleanup struct {
	seq     uint64
	dispose Disposer
}

// Cleanups accumulates disposers of listeners registered for modules so
// they can be released when module is re-rendered, deleted or editor is
// unmounted.
type Cleanups struct {
	seq      uint64
	order    []string
	byModule map[string][]cleanup
}

func NewCleanups() *Cleanups {
	return &Cleanups{byModule: make(map[string][]cleanup)}
}

// Add tracks disposer under module id. Returned disposer releases listener
// early and forgets it.
func (c *Cleanups) Add(id string, d Disposer) Disposer {
	c.seq++
	seq := c.seq
	if _, ok := c.byModule[id]; !ok {
		c.order = append(c.order, id)
	}
	c.byModule[id] = append(c.byModule[id], cleanup{seq: seq, dispose: d})

	return func() error {
		entries := c.byModule[id]
		for i, e := range entries {
			if e.seq == seq {
				c.forget(id, append(entries[:i:i], entries[i+1:]...))
				return e.dispose()
			}
		}
		return ErrListenerRemoved
	}
}

func (c *Cleanups) forget(id string, entries []cleanup) {
	if len(entries) > 0 {
		c.byModule[id] = entries
		return
	}
	delete(c.byModule, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Dispose releases all listeners of module, most recent first.
func (c *Cleanups) Dispose(id string) (err error) {
	entries := c.byModule[id]
	c.forget(id, nil)
	for i := len(entries) - 1; i >= 0; i-- {
		err = multierr.Append(err, entries[i].dispose())
	}
	return err
}

// DisposeAll releases everything tracked.
func (c *Cleanups) DisposeAll() (err error) {
	for len(c.order) > 0 {
		err = multierr.Append(err, c.Dispose(c.order[len(c.order)-1]))
	}
	return err
}

// Len returns number of tracked disposers.
func (c *Cleanups) Len() int {
	n := 0
	for _, entries := range c.byModule {
		n += len(entries)
	}
	return n
}

// Modules returns ids having tracked disposers in order of first
// registration.
func (c *Cleanups) Modules() []string {
	return append([]string(nil), c.order...)
}
