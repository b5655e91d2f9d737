package convert

import (
	"fmt"
	"strings"
)

// Action is batch operation applied to every recognized source.
type Action int

const (
	// ActionSanitize cleans HTML pages for marketplace.
	ActionSanitize Action = iota
	// ActionSplit produces module list (JSON) from HTML page.
	ActionSplit
	// ActionJoin assembles HTML page from module list.
	ActionJoin
	// ActionExport generates desktop or mobile page from structured
	// template, module list or HTML page.
	ActionExport
)

var actionNames = []string{"sanitize", "split", "join", "export"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%s is not a valid Action, try [%s]", name, strings.Join(actionNames, ", "))
}

// accepts reports whether source kind can be processed by action.
func (a Action) accepts(k srcKind) bool {
	switch a {
	case ActionSanitize, ActionSplit:
		return k == srcHTML
	case ActionJoin:
		return k == srcJSON
	case ActionExport:
		return k == srcHTML || k == srcJSON
	}
	return false
}

// modulesExt marks module list files so join can restore original name.
const modulesExt = ".modules"

func (a Action) outputExt(mobile bool) string {
	switch a {
	case ActionSplit:
		return modulesExt + ".json"
	case ActionExport:
		if mobile {
			return ".mobile.html"
		}
		return ".html"
	default:
		return ".html"
	}
}
