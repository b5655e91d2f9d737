package page

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type Category string

const (
	CategoryContent  Category = "content"
	CategoryMedia    Category = "media"
	CategoryLayout   Category = "layout"
	CategoryData     Category = "data"
	CategoryAdvanced Category = "advanced"
)

// Metadata describes module type for palettes and property panels.
type Metadata struct {
	Type        ModuleType
	Name        string
	Description string
	Category    Category
	SortOrder   int
	Enabled     bool
	// New creates module with type defaults.
	New func(id string) PageModule
	// Validate returns problems found in module, nil when module is fine.
	Validate func(PageModule) []string
}

// Registry keeps metadata of module types.
type Registry struct {
	entries map[ModuleType]Metadata
}

// NewRegistry returns registry with built in module types.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[ModuleType]Metadata)}
	for _, md := range builtins() {
		r.Register(md)
	}
	return r
}

// Register adds or replaces module type.
func (r *Registry) Register(md Metadata) {
	r.entries[md.Type] = md
}

func (r *Registry) Lookup(t ModuleType) (Metadata, bool) {
	md, ok := r.entries[t]
	return md, ok
}

// Types returns enabled types ordered for presentation.
func (r *Registry) Types() []Metadata {
	out := make([]Metadata, 0, len(r.entries))
	for _, md := range r.entries {
		if md.Enabled {
			out = append(out, md)
		}
	}
	slices.SortFunc(out, func(a, b Metadata) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), strings.Compare(string(a.Type), string(b.Type)))
	})
	return out
}

// New creates module of type t with defaults. Empty id gets generated one.
func (r *Registry) New(t ModuleType, id string) (PageModule, error) {
	md, ok := r.entries[t]
	if !ok || md.New == nil {
		return nil, fmt.Errorf("create %q: %w", t, ErrUnknownModuleType)
	}
	if id == "" {
		id = newID(string(t))
	}
	return md.New(id), nil
}

// Validate checks module against its type rules.
func (r *Registry) Validate(m PageModule) []string {
	md, ok := r.entries[m.Type()]
	if !ok {
		return []string{fmt.Sprintf("unknown module type %q", m.Type())}
	}
	if md.Validate == nil {
		return nil
	}
	return md.Validate(m)
}

func builtins() []Metadata {
	return []Metadata{
		{
			Type: TypeTitle, Name: "标题", Description: "添加标题文本", Category: CategoryContent, SortOrder: 10, Enabled: true,
			New: func(id string) PageModule {
				return &TitleModule{Base: Base{ID: id}, Text: "新标题", Level: 1, Alignment: AlignLeft}
			},
			Validate: func(pm PageModule) []string {
				m, ok := pm.(*TitleModule)
				if !ok {
					return []string{"not a title module"}
				}
				var problems []string
				if strings.TrimSpace(m.Text) == "" {
					problems = append(problems, "title text is empty")
				}
				if m.Level < 1 || m.Level > 6 {
					problems = append(problems, "title level must be between 1 and 6")
				}
				return problems
			},
		},
		{
			Type: TypeText, Name: "文本", Description: "添加段落文本", Category: CategoryContent, SortOrder: 20, Enabled: true,
			New: func(id string) PageModule {
				return &TextModule{Base: Base{ID: id}, Content: "请输入文本内容", Alignment: AlignLeft}
			},
			Validate: func(pm PageModule) []string {
				m, ok := pm.(*TextModule)
				if !ok {
					return []string{"not a text module"}
				}
				if strings.TrimSpace(m.Content) == "" {
					return []string{"text content is empty"}
				}
				return nil
			},
		},
		{
			Type: TypeImage, Name: "图片", Description: "添加图片", Category: CategoryMedia, SortOrder: 30, Enabled: true,
			New: func(id string) PageModule {
				return &ImageModule{Base: Base{ID: id}, Alt: "图片描述", Alignment: AlignCenter}
			},
			Validate: func(pm PageModule) []string {
				m, ok := pm.(*ImageModule)
				if !ok {
					return []string{"not an image module"}
				}
				if strings.TrimSpace(m.Alt) == "" {
					return []string{"image description is empty"}
				}
				return nil
			},
		},
		{
			Type: TypeSeparator, Name: "分隔线", Description: "添加分隔线", Category: CategoryLayout, SortOrder: 40, Enabled: true,
			New: func(id string) PageModule {
				return &SeparatorModule{Base: Base{ID: id}, SeparatorType: SeparatorLine, LineStyle: "solid", LineColor: "#e0e0e0", LineThickness: 1, SpaceHeight: "medium"}
			},
		},
		{
			Type: TypeKeyValue, Name: "键值对", Description: "添加键值对信息", Category: CategoryData, SortOrder: 50, Enabled: true,
			New: func(id string) PageModule {
				return &KeyValueModule{Base: Base{ID: id}, Rows: []KeyValueRow{{Key: "键", Value: "值"}}, LabelBackgroundColor: "#f3f4f6", TextColor: "#374151"}
			},
			Validate: func(pm PageModule) []string {
				m, ok := pm.(*KeyValueModule)
				if !ok {
					return []string{"not a key value module"}
				}
				if len(m.Rows) == 0 {
					return []string{"at least one key value row is required"}
				}
				return nil
			},
		},
		{
			Type: TypeMultiColumn, Name: "多列图文", Description: "添加图文组合", Category: CategoryLayout, SortOrder: 60, Enabled: true,
			New: func(id string) PageModule {
				return &MultiColumnModule{
					Base:        Base{ID: id},
					Layout:      LayoutImageLeft,
					ImageConfig: ImageConfig{Alignment: AlignCenter, Width: "50%"},
					TextConfig:  TextConfig{Alignment: AlignLeft, FontSize: "14px", Color: "#000000"},
				}
			},
			Validate: func(pm PageModule) []string {
				m, ok := pm.(*MultiColumnModule)
				if !ok {
					return []string{"not a multi column module"}
				}
				switch m.Layout {
				case LayoutImageLeft, LayoutTextLeft, LayoutImageTop, LayoutTextTop:
					return nil
				}
				return []string{fmt.Sprintf("unknown layout %q", m.Layout)}
			},
		},
		{
			Type: TypeCustom, Name: "自定义", Description: "导入的 HTML 片段", Category: CategoryAdvanced, SortOrder: 70, Enabled: true,
			New: func(id string) PageModule {
				return &CustomModule{Base: Base{ID: id}}
			},
		},
	}
}
