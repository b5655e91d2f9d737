package editor

import (
	"pagemaker/utils/debug"
)

// String dumps mounted modules with their state and live markup, used in
// debug logs and test failures.
func (s *ModuleState) String() string {
	if s == nil {
		return "<nil ModuleState>"
	}
	tw := debug.NewTreeWriter()
	tw.Line(0, "ModuleState mounted[%t] modules[%d] selected[%d] listeners[%d]",
		s.mounted, s.list.Len(), len(s.selectedIDs()), s.editCleanups.Len())
	for _, m := range s.list.Modules() {
		state := Idle
		if tc := s.texts[m.ID]; tc != nil {
			state = tc.State()
		}
		tw.Line(1, "Module id=%q kind=%s selected[%t] edit[%s]", m.ID, m.Kind, s.selected[m.ID], state)
		tw.Node(2, s.hosts[m.ID])
	}
	return tw.String()
}
