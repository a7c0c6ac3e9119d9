package settings

import (
	"sort"
	"testing"
)

func TestPatchApply(t *testing.T) {
	s := Defaults()
	applied := Patch{
		"fontSize":             float64(28),
		"offsetY":              "50",
		"opacity":              1.5,
		"srtTextColor":         "#ffcc00",
		"srtBackgroundOpacity": "0.25",
		"srtFontWeight":        "bold",
		"unknownKey":           true,
	}.Apply(&s)

	sort.Strings(applied)
	want := []string{"fontSize", "offsetY", "opacity", "srtBackgroundOpacity", "srtFontWeight", "srtTextColor"}
	if len(applied) != len(want) {
		t.Fatalf("expected applied %v, got %v", want, applied)
	}
	for i := range want {
		if applied[i] != want[i] {
			t.Errorf("expected applied %v, got %v", want, applied)
			break
		}
	}

	if s.FontSize != 28 {
		t.Errorf("expected fontSize 28, got %d", s.FontSize)
	}
	if s.OffsetY != 50 {
		t.Errorf("expected offsetY 50, got %d", s.OffsetY)
	}
	if s.Opacity != 1 {
		t.Errorf("expected opacity clamped to 1, got %v", s.Opacity)
	}
	if s.SRTBackgroundOpacity != 0.25 {
		t.Errorf("expected background opacity 0.25, got %v", s.SRTBackgroundOpacity)
	}
	if s.SRTTextColor != "#ffcc00" || s.SRTFontWeight != "bold" {
		t.Errorf("unexpected string fields: %+v", s)
	}
}

func TestPatchIgnoresWrongTypes(t *testing.T) {
	s := Defaults()
	applied := Patch{
		"fontSize":      "large",
		"offsetY":       []any{1},
		"srtFontFamily": 12.0,
		"srtTextColor":  "red",
		"srtPadding":    nil,
	}.Apply(&s)

	if len(applied) != 0 {
		t.Errorf("expected nothing applied, got %v", applied)
	}
	if s != Defaults() {
		t.Errorf("expected defaults untouched, got %+v", s)
	}
}

func TestParsePatch(t *testing.T) {
	p, err := ParsePatch([]byte(`{"offsetY": 50, "srtOutlineWidth": 2.5}`))
	if err != nil {
		t.Fatalf("ParsePatch returned error: %v", err)
	}

	s := Defaults()
	p.Apply(&s)
	if s.OffsetY != 50 || s.SRTOutlineWidth != 2.5 {
		t.Errorf("unexpected settings: %+v", s)
	}

	if _, err := ParsePatch([]byte(`{`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestSettingsPatchRoundTrip(t *testing.T) {
	s := Defaults()
	s.FontSize = 31
	s.SRTTextAlign = "left"

	restored := Defaults()
	s.Patch().Apply(&restored)
	if restored != s {
		t.Errorf("expected %+v, got %+v", s, restored)
	}
}

func TestIsSRTOnly(t *testing.T) {
	if !IsSRTOnly("srtPadding") {
		t.Error("expected srtPadding to be SRT-only")
	}
	if IsSRTOnly("offsetY") {
		t.Error("expected offsetY to apply to both formats")
	}
}
