package page

import (
	"strings"
)

// Structured module type used by page templates.
// ENUM(title, text, image, separator, keyValue, multiColumn, custom)
type ModuleType string

const (
	TypeTitle       ModuleType = "title"
	TypeText        ModuleType = "text"
	TypeImage       ModuleType = "image"
	TypeSeparator   ModuleType = "separator"
	TypeKeyValue    ModuleType = "keyValue"
	TypeMultiColumn ModuleType = "multiColumn"
	TypeCustom      ModuleType = "custom"
)

// ModuleTypes lists known module types in registry order.
func ModuleTypes() []ModuleType {
	return []ModuleType{TypeTitle, TypeText, TypeImage, TypeSeparator, TypeKeyValue, TypeMultiColumn, TypeCustom}
}

// PageModule is closed set of structured modules. Every variant lives in this
// package, consumers switch on concrete type.
type PageModule interface {
	ModuleID() string
	Type() ModuleType
	pageModule()
}

// Base carries fields common to every module.
type Base struct {
	ID string `json:"id"`
}

func (b Base) ModuleID() string { return b.ID }
func (Base) pageModule()        {}

type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// Legacy returns value usable in align attributes of restricted markup,
// which does not know justify.
func (a Alignment) Legacy() Alignment {
	switch a {
	case AlignCenter, AlignRight:
		return a
	}
	return AlignLeft
}

// OrDefault returns a if it is known alignment, def otherwise.
func (a Alignment) OrDefault(def Alignment) Alignment {
	switch a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return a
	}
	return def
}

type TitleModule struct {
	Base
	Text            string    `json:"text"`
	Level           int       `json:"level"`
	Alignment       Alignment `json:"alignment,omitempty"`
	Color           string    `json:"color,omitempty"`
	FontFamily      string    `json:"fontFamily,omitempty"`
	FontWeight      string    `json:"fontWeight,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
}

func (TitleModule) Type() ModuleType { return TypeTitle }

// TextModule content is rich text, limited inline formatting is kept on
// export, anything else is emitted as literal text.
type TextModule struct {
	Base
	Content         string    `json:"content"`
	Alignment       Alignment `json:"alignment,omitempty"`
	FontSize        string    `json:"fontSize,omitempty"`
	FontFamily      string    `json:"fontFamily,omitempty"`
	TextColor       string    `json:"textColor,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
}

func (TextModule) Type() ModuleType { return TypeText }

type LinkType string

const (
	LinkURL    LinkType = "url"
	LinkEmail  LinkType = "email"
	LinkPhone  LinkType = "phone"
	LinkAnchor LinkType = "anchor"
)

type Link struct {
	Type  LinkType `json:"type"`
	Value string   `json:"value"`
}

// Href builds link target for the link type. Empty value gives empty href.
func (l Link) Href() string {
	v := strings.TrimSpace(l.Value)
	if v == "" {
		return ""
	}
	switch l.Type {
	case LinkEmail:
		if !strings.HasPrefix(strings.ToLower(v), "mailto:") {
			return "mailto:" + v
		}
	case LinkPhone:
		if !strings.HasPrefix(strings.ToLower(v), "tel:") {
			return "tel:" + strings.Join(strings.Fields(v), "")
		}
	case LinkAnchor:
		if !strings.HasPrefix(v, "#") {
			return "#" + v
		}
	}
	return v
}

type ImageModule struct {
	Base
	Src       string    `json:"src"`
	Alt       string    `json:"alt"`
	Width     string    `json:"width,omitempty"`
	Alignment Alignment `json:"alignment,omitempty"`
	Link      *Link     `json:"link,omitempty"`
}

func (ImageModule) Type() ModuleType { return TypeImage }

type SeparatorKind string

const (
	SeparatorLine  SeparatorKind = "line"
	SeparatorSpace SeparatorKind = "space"
)

type SeparatorModule struct {
	Base
	SeparatorType SeparatorKind `json:"separatorType"`
	LineStyle     string        `json:"lineStyle,omitempty"`
	LineColor     string        `json:"lineColor,omitempty"`
	LineThickness int           `json:"lineThickness,omitempty"`
	SpaceHeight   string        `json:"spaceHeight,omitempty"`
}

func (SeparatorModule) Type() ModuleType { return TypeSeparator }

// spaceHeights maps named blank separator heights to pixels.
var spaceHeights = map[string]int{
	"small":       20,
	"medium":      40,
	"large":       60,
	"extra-large": 80,
}

// SpacePixels returns blank separator height, medium when unknown.
func (m SeparatorModule) SpacePixels() int {
	if px, ok := spaceHeights[m.SpaceHeight]; ok {
		return px
	}
	return spaceHeights["medium"]
}

type KeyValueRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type KeyValueModule struct {
	Base
	Rows                 []KeyValueRow `json:"rows"`
	LabelBackgroundColor string        `json:"labelBackgroundColor,omitempty"`
	TextColor            string        `json:"textColor,omitempty"`
}

func (KeyValueModule) Type() ModuleType { return TypeKeyValue }

type ColumnLayout string

const (
	LayoutImageLeft ColumnLayout = "imageLeft"
	LayoutTextLeft  ColumnLayout = "textLeft"
	LayoutImageTop  ColumnLayout = "imageTop"
	LayoutTextTop   ColumnLayout = "textTop"
)

// Horizontal reports whether columns are placed side by side.
func (l ColumnLayout) Horizontal() bool {
	return l != LayoutImageTop && l != LayoutTextTop
}

// ImageFirst reports whether image precedes text.
func (l ColumnLayout) ImageFirst() bool {
	return l != LayoutTextLeft && l != LayoutTextTop
}

type ImageConfig struct {
	Src       string    `json:"src"`
	Alt       string    `json:"alt"`
	Alignment Alignment `json:"alignment,omitempty"`
	Link      *Link     `json:"link,omitempty"`
	Width     string    `json:"width,omitempty"`
}

type TextConfig struct {
	Content         string    `json:"content"`
	Alignment       Alignment `json:"alignment,omitempty"`
	Font            string    `json:"font,omitempty"`
	FontSize        string    `json:"fontSize,omitempty"`
	Color           string    `json:"color,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
}

type MultiColumnModule struct {
	Base
	Layout      ColumnLayout `json:"layout"`
	ImageConfig ImageConfig  `json:"imageConfig"`
	TextConfig  TextConfig   `json:"textConfig"`
	ColumnRatio string       `json:"columnRatio,omitempty"`
}

func (MultiColumnModule) Type() ModuleType { return TypeMultiColumn }

// CustomModule carries markup as is, for example a module produced by
// splitting imported page.
type CustomModule struct {
	Base
	HTML string     `json:"html"`
	Kind ModuleKind `json:"kind,omitempty"`
}

func (CustomModule) Type() ModuleType { return TypeCustom }

// UnknownModule preserves module of type this version does not know, so it
// survives load and save and is exported as placeholder.
type UnknownModule struct {
	Base
	TypeName string `json:"-"`
	Raw      []byte `json:"-"`
}

func (m UnknownModule) Type() ModuleType { return ModuleType(m.TypeName) }

// FromHTMLModule wraps split module into structured custom module.
func FromHTMLModule(m HTMLModule) *CustomModule {
	return &CustomModule{Base: Base{ID: m.ID}, HTML: m.HTML, Kind: m.Kind}
}
