// Package common keeps enums shared between configuration and processing
// packages so neither has to import the other.
package common

import (
	"fmt"
	"strings"
)

// Marketplace area page content is prepared for.
// ENUM(pc, mobile)
type TargetArea string

const (
	TargetAreaPc     TargetArea = "pc"
	TargetAreaMobile TargetArea = "mobile"
)

var targetAreaNames = []string{string(TargetAreaPc), string(TargetAreaMobile)}

// TargetAreaNames returns list of possible string values of TargetArea.
func TargetAreaNames() []string {
	tmp := make([]string, len(targetAreaNames))
	copy(tmp, targetAreaNames)
	return tmp
}

func (x TargetArea) String() string {
	return string(x)
}

// IsValid checks that value is one of the enumerated ones.
func (x TargetArea) IsValid() bool {
	_, err := ParseTargetArea(string(x))
	return err == nil
}

// IsMobile reports whether restrictive mobile dialect must be produced.
func (x TargetArea) IsMobile() bool {
	return x == TargetAreaMobile
}

// ParseTargetArea attempts to convert a string to a TargetArea.
func ParseTargetArea(name string) (TargetArea, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pc", "desktop":
		return TargetAreaPc, nil
	case "mobile", "sp":
		return TargetAreaMobile, nil
	}
	return TargetArea(""), fmt.Errorf("%s is not a valid TargetArea, try [%s]", name, strings.Join(targetAreaNames, ", "))
}

func (x TargetArea) MarshalText() ([]byte, error) {
	return []byte(string(x)), nil
}

func (x *TargetArea) UnmarshalText(text []byte) error {
	tmp, err := ParseTargetArea(string(text))
	if err != nil {
		return err
	}
	*x = tmp
	return nil
}

// Link target used for anchors created while editing text.
// ENUM(_top, _blank, _self, _parent)
type LinkTarget string

const (
	LinkTargetTop    LinkTarget = "_top"
	LinkTargetBlank  LinkTarget = "_blank"
	LinkTargetSelf   LinkTarget = "_self"
	LinkTargetParent LinkTarget = "_parent"
)

func (x LinkTarget) String() string {
	return string(x)
}

// ParseLinkTarget attempts to convert a string to a LinkTarget.
func ParseLinkTarget(name string) (LinkTarget, error) {
	switch x := LinkTarget(strings.ToLower(strings.TrimSpace(name))); x {
	case LinkTargetTop, LinkTargetBlank, LinkTargetSelf, LinkTargetParent:
		return x, nil
	}
	return LinkTarget(""), fmt.Errorf("%s is not a valid LinkTarget", name)
}

func (x LinkTarget) MarshalText() ([]byte, error) {
	return []byte(string(x)), nil
}

func (x *LinkTarget) UnmarshalText(text []byte) error {
	tmp, err := ParseLinkTarget(string(text))
	if err != nil {
		return err
	}
	*x = tmp
	return nil
}
