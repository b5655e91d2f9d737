package page

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownModuleType is returned when module type is not registered.
var ErrUnknownModuleType = errors.New("unknown module type")

type header struct {
	ID   string     `json:"id"`
	Type ModuleType `json:"type"`
}

// flatten marshals module fields and puts type discriminator in front of
// them.
func flatten(t ModuleType, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("module %s does not marshal to object", t)
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	tb, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	buf.Write(tb)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m TitleModule) MarshalJSON() ([]byte, error) {
	type plain TitleModule
	return flatten(TypeTitle, plain(m))
}

func (m TextModule) MarshalJSON() ([]byte, error) {
	type plain TextModule
	return flatten(TypeText, plain(m))
}

func (m ImageModule) MarshalJSON() ([]byte, error) {
	type plain ImageModule
	return flatten(TypeImage, plain(m))
}

func (m SeparatorModule) MarshalJSON() ([]byte, error) {
	type plain SeparatorModule
	return flatten(TypeSeparator, plain(m))
}

func (m KeyValueModule) MarshalJSON() ([]byte, error) {
	type plain KeyValueModule
	return flatten(TypeKeyValue, plain(m))
}

// UnmarshalJSON accepts legacy "pairs" field in place of rows.
func (m *KeyValueModule) UnmarshalJSON(data []byte) error {
	type plain KeyValueModule
	var aux struct {
		plain
		Pairs []KeyValueRow `json:"pairs"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = KeyValueModule(aux.plain)
	if len(m.Rows) == 0 && len(aux.Pairs) > 0 {
		m.Rows = aux.Pairs
	}
	return nil
}

func (m MultiColumnModule) MarshalJSON() ([]byte, error) {
	type plain MultiColumnModule
	return flatten(TypeMultiColumn, plain(m))
}

func (m CustomModule) MarshalJSON() ([]byte, error) {
	type plain CustomModule
	return flatten(TypeCustom, plain(m))
}

// MarshalJSON writes preserved original document.
func (m UnknownModule) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	return json.Marshal(header{ID: m.ID, Type: ModuleType(m.TypeName)})
}

// DecodeModule decodes single module dispatching on its "type" field.
// Modules of unknown type are returned as *UnknownModule.
func DecodeModule(data []byte) (PageModule, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("unable to decode module header: %w", err)
	}

	var m PageModule
	switch h.Type {
	case TypeTitle:
		m = &TitleModule{}
	case TypeText:
		m = &TextModule{}
	case TypeImage:
		m = &ImageModule{}
	case TypeSeparator:
		m = &SeparatorModule{}
	case TypeKeyValue:
		m = &KeyValueModule{}
	case TypeMultiColumn:
		m = &MultiColumnModule{}
	case TypeCustom:
		m = &CustomModule{}
	default:
		return &UnknownModule{Base: Base{ID: h.ID}, TypeName: string(h.Type), Raw: bytes.Clone(data)}, nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("unable to decode %s module %q: %w", h.Type, h.ID, err)
	}
	return m, nil
}

// Modules is ordered module list with polymorphic JSON encoding.
type Modules []PageModule

func (ms *Modules) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Modules, 0, len(raw))
	for i, r := range raw {
		m, err := DecodeModule(r)
		if err != nil {
			return fmt.Errorf("module %d: %w", i, err)
		}
		out = append(out, m)
	}
	*ms = out
	return nil
}

func (ms Modules) MarshalJSON() ([]byte, error) {
	if ms == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]PageModule(ms))
}
