// Package page holds editor data model: split HTML modules, structured page
// modules consumed by exporter and page templates persisted by collaborators.
package page

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Structural classification of split HTML fragment.
// ENUM(gap, image, table, text)
type ModuleKind string

const (
	KindGap   ModuleKind = "gap"
	KindImage ModuleKind = "image"
	KindTable ModuleKind = "table"
	KindText  ModuleKind = "text"
)

var moduleKindNames = []string{string(KindGap), string(KindImage), string(KindTable), string(KindText)}

// ModuleKindNames returns list of possible string values of ModuleKind.
func ModuleKindNames() []string {
	tmp := make([]string, len(moduleKindNames))
	copy(tmp, moduleKindNames)
	return tmp
}

func (x ModuleKind) String() string {
	return string(x)
}

// IsValid checks that value is one of the enumerated ones.
func (x ModuleKind) IsValid() bool {
	return slices.Contains(moduleKindNames, string(x))
}

// ParseModuleKind attempts to convert a string to a ModuleKind.
func ParseModuleKind(name string) (ModuleKind, error) {
	if x := ModuleKind(strings.ToLower(strings.TrimSpace(name))); x.IsValid() {
		return x, nil
	}
	return ModuleKind(""), fmt.Errorf("%s is not a valid ModuleKind, try [%s]", name, strings.Join(moduleKindNames, ", "))
}

func (x ModuleKind) MarshalText() ([]byte, error) {
	return []byte(string(x)), nil
}

func (x *ModuleKind) UnmarshalText(text []byte) error {
	tmp, err := ParseModuleKind(string(text))
	if err != nil {
		return err
	}
	*x = tmp
	return nil
}

// HTMLModule is one independently editable fragment of split page markup.
// Kind is decided once when markup is split and never changes afterwards.
type HTMLModule struct {
	ID   string     `json:"id"`
	Kind ModuleKind `json:"kind"`
	// HTML is sanitized markup, the single source for rendering and export.
	HTML string `json:"html"`
	// RawFragment is unit markup as it was cut from the page, before module
	// level sanitizing.
	RawFragment string `json:"rawFragment,omitempty"`
}

// NewModuleID returns fresh identifier prefixed with kind. Identifiers are
// time ordered UUIDs and are never reused.
func NewModuleID(kind ModuleKind) string {
	return newID(string(kind))
}

func newID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "-" + id.String()
}
