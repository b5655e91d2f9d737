package common

import "testing"

func TestParseTargetArea(t *testing.T) {
	tests := []struct {
		in      string
		want    TargetArea
		wantErr bool
	}{
		{"pc", TargetAreaPc, false},
		{"PC", TargetAreaPc, false},
		{" mobile ", TargetAreaMobile, false},
		{"desktop", TargetAreaPc, false},
		{"tablet", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTargetArea(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTargetArea(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTargetArea(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTargetArea_UnmarshalText(t *testing.T) {
	var ta TargetArea
	if err := ta.UnmarshalText([]byte("Mobile")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if !ta.IsMobile() {
		t.Errorf("expected mobile target, got %q", ta)
	}
	if err := ta.UnmarshalText([]byte("watch")); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestTargetAreaNames(t *testing.T) {
	names := TargetAreaNames()
	if len(names) != 2 || names[0] != "pc" || names[1] != "mobile" {
		t.Errorf("TargetAreaNames() = %v", names)
	}
	names[0] = "changed"
	if TargetAreaNames()[0] != "pc" {
		t.Error("TargetAreaNames() must return a copy")
	}
}

func TestParseLinkTarget(t *testing.T) {
	for _, in := range []string{"_top", "_BLANK", "_self", "_parent"} {
		if _, err := ParseLinkTarget(in); err != nil {
			t.Errorf("ParseLinkTarget(%q) error = %v", in, err)
		}
	}
	if _, err := ParseLinkTarget("top"); err == nil {
		t.Error("ParseLinkTarget(\"top\") expected error")
	}
}
