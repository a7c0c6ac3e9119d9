package host

import (
	"strings"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		alpha   float64
		want    string
		wantErr bool
	}{
		{"#000000", 0.7, "rgba(0, 0, 0, 0.7)", false},
		{"#ff8000", 1, "rgba(255, 128, 0, 1)", false},
		{"#fff", 0.5, "rgba(255, 255, 255, 0.5)", false},
		{"00ff00", 2, "rgba(0, 255, 0, 1)", false},
		{"#12345", 1, "", true},
		{"#gggggg", 1, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, err := ParseHexColor(tt.hex, tt.alpha)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHexColor(%q) error = %v, wantErr %v", tt.hex, err, tt.wantErr)
			}
			if !tt.wantErr && got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.String())
			}
		})
	}
}

func TestRegionStyleCSS(t *testing.T) {
	style := RegionStyle{
		BottomPercent: 7.5,
		FontFamily:    "Arial",
		FontSize:      20,
		FontWeight:    "bold",
		FontStyle:     "normal",
		TextAlign:     "center",
		Color:         "#ffffff",
		LineHeight:    1.2,
		Opacity:       1,
		Shadows:       []Shadow{{X: -1, Y: 0, Color: "#000000"}},
	}

	css := style.CSS()
	for _, want := range []string{
		"bottom: 7.5%",
		"font-size: 20px",
		"line-height: 1.2",
		"text-shadow: -1px 0px 0px #000000",
	} {
		if !strings.Contains(css, want) {
			t.Errorf("expected CSS to contain %q, got %q", want, css)
		}
	}

	if (RegionStyle{}).TextShadow() != "none" {
		t.Errorf("expected 'none' for empty shadow list")
	}
}
