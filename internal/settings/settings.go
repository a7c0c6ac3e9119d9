package settings

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Settings holds presentation options shared by both sinks. The JSON names
// are the persisted schema.
type Settings struct {
	FontSize int     `json:"fontSize"`
	Opacity  float64 `json:"opacity"`
	OffsetY  int     `json:"offsetY"`

	SRTFontFamily        string  `json:"srtFontFamily"`
	SRTFontWeight        string  `json:"srtFontWeight"`
	SRTFontStyle         string  `json:"srtFontStyle"`
	SRTTextAlign         string  `json:"srtTextAlign"`
	SRTBackgroundColor   string  `json:"srtBackgroundColor"`
	SRTBackgroundOpacity float64 `json:"srtBackgroundOpacity"`
	SRTTextColor         string  `json:"srtTextColor"`
	SRTOutlineColor      string  `json:"srtOutlineColor"`
	SRTOutlineWidth      float64 `json:"srtOutlineWidth"`
	SRTLineHeight        float64 `json:"srtLineHeight"`
	SRTPadding           int     `json:"srtPadding"`
}

const DefaultFontFamily = "Microsoft YaHei, SimHei, Arial, sans-serif"

func Defaults() Settings {
	return Settings{
		FontSize:             20,
		Opacity:              1,
		OffsetY:              0,
		SRTFontFamily:        DefaultFontFamily,
		SRTFontWeight:        "normal",
		SRTFontStyle:         "normal",
		SRTTextAlign:         "center",
		SRTBackgroundColor:   "#000000",
		SRTBackgroundOpacity: 0.7,
		SRTTextColor:         "#ffffff",
		SRTOutlineColor:      "#000000",
		SRTOutlineWidth:      1,
		SRTLineHeight:        1.2,
		SRTPadding:           8,
	}
}

// IsSRTOnly reports whether key only affects SRT presentation.
func IsSRTOnly(key string) bool {
	return strings.HasPrefix(key, "srt")
}

// Patch is a partial update keyed by the persisted field names, as decoded
// from JSON.
type Patch map[string]any

func ParsePatch(data []byte) (Patch, error) {
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

type field struct {
	kind  fieldKind
	ints  func(s *Settings) *int
	nums  func(s *Settings) *float64
	strs  func(s *Settings) *string
	unit  bool // clamp to [0,1]
	color bool
}

type fieldKind int

const (
	intField fieldKind = iota
	floatField
	stringField
)

var fields = map[string]field{
	"fontSize":             {kind: intField, ints: func(s *Settings) *int { return &s.FontSize }},
	"opacity":              {kind: floatField, nums: func(s *Settings) *float64 { return &s.Opacity }, unit: true},
	"offsetY":              {kind: intField, ints: func(s *Settings) *int { return &s.OffsetY }},
	"srtFontFamily":        {kind: stringField, strs: func(s *Settings) *string { return &s.SRTFontFamily }},
	"srtFontWeight":        {kind: stringField, strs: func(s *Settings) *string { return &s.SRTFontWeight }},
	"srtFontStyle":         {kind: stringField, strs: func(s *Settings) *string { return &s.SRTFontStyle }},
	"srtTextAlign":         {kind: stringField, strs: func(s *Settings) *string { return &s.SRTTextAlign }},
	"srtBackgroundColor":   {kind: stringField, strs: func(s *Settings) *string { return &s.SRTBackgroundColor }, color: true},
	"srtBackgroundOpacity": {kind: floatField, nums: func(s *Settings) *float64 { return &s.SRTBackgroundOpacity }, unit: true},
	"srtTextColor":         {kind: stringField, strs: func(s *Settings) *string { return &s.SRTTextColor }, color: true},
	"srtOutlineColor":      {kind: stringField, strs: func(s *Settings) *string { return &s.SRTOutlineColor }, color: true},
	"srtOutlineWidth":      {kind: floatField, nums: func(s *Settings) *float64 { return &s.SRTOutlineWidth }},
	"srtLineHeight":        {kind: floatField, nums: func(s *Settings) *float64 { return &s.SRTLineHeight }},
	"srtPadding":           {kind: intField, ints: func(s *Settings) *int { return &s.SRTPadding }},
}

// Apply merges p into s and returns the keys that were taken. Unknown keys
// and values of the wrong type are left out; numeric fields also accept
// numeric strings since form controls send those.
func (p Patch) Apply(s *Settings) []string {
	var applied []string
	for key, raw := range p {
		f, ok := fields[key]
		if !ok {
			continue
		}

		switch f.kind {
		case intField:
			n, ok := toFloat(raw)
			if !ok {
				continue
			}
			*f.ints(s) = int(math.Round(n))
		case floatField:
			n, ok := toFloat(raw)
			if !ok {
				continue
			}
			if f.unit {
				n = math.Max(0, math.Min(1, n))
			}
			*f.nums(s) = n
		case stringField:
			str, ok := raw.(string)
			if !ok {
				continue
			}
			if f.color && !isHexColor(str) {
				continue
			}
			*f.strs(s) = str
		}
		applied = append(applied, key)
	}
	return applied
}

// Patch returns every field of s as a patch.
func (s Settings) Patch() Patch {
	data, _ := json.Marshal(s)
	var p Patch
	_ = json.Unmarshal(data, &p)
	return p
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func isHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") || (len(s) != 4 && len(s) != 7) {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}
