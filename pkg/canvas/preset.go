package canvas

import (
	"fmt"
	"strconv"
	"strings"
)

// PresetKind はプリセットの計算方式です。
type PresetKind string

const (
	KindIdentity PresetKind = "identity"
	KindRatio    PresetKind = "ratio"
	KindSquare   PresetKind = "square"
)

// Tier は拡張段階です。比率を満たした後のキャンバスに倍率を掛けます。
type Tier int

const (
	TierBase Tier = iota
	TierPlus50
	TierPlus100
)

// Multiplier は段階に対応する倍率を返します。
func (t Tier) Multiplier() float64 {
	switch t {
	case TierPlus50:
		return 1.5
	case TierPlus100:
		return 2.0
	default:
		return 1.0
	}
}

// Suffix は "+50" のような表記上の接尾辞を返します。
func (t Tier) Suffix() string {
	switch t {
	case TierPlus50:
		return "+50"
	case TierPlus100:
		return "+100"
	default:
		return ""
	}
}

// Preset はキャンバス拡張のプリセットです。
type Preset struct {
	Kind   PresetKind
	RatioW int
	RatioH int
	Tier   Tier
}

// PresetIdentity は寸法を変えない暗黙のプリセットです。
var PresetIdentity = Preset{Kind: KindIdentity}

// families は比率プリセットの一覧です。1:1 は正方形として扱います。
var families = [][2]int{
	{16, 9},
	{4, 3},
	{9, 16},
	{3, 4},
	{1, 1},
}

// Presets は全比率・全段階のプリセットを表示順に返します。
func Presets() []Preset {
	out := make([]Preset, 0, len(families)*3)
	for _, f := range families {
		for _, tier := range []Tier{TierBase, TierPlus50, TierPlus100} {
			out = append(out, newRatioPreset(f[0], f[1], tier))
		}
	}
	return out
}

func newRatioPreset(w, h int, tier Tier) Preset {
	kind := KindRatio
	if w == h {
		kind = KindSquare
	}
	return Preset{Kind: kind, RatioW: w, RatioH: h, Tier: tier}
}

// Name は "16:9+50" のような表記を返します。
func (p Preset) Name() string {
	if p.Kind == KindIdentity {
		return "identity"
	}
	return fmt.Sprintf("%d:%d%s", p.RatioW, p.RatioH, p.Tier.Suffix())
}

// ParsePreset は Name の表記からプリセットを復元します。
// "identity" と "original" は PresetIdentity として扱います。
func ParsePreset(s string) (Preset, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "identity", "original":
		return PresetIdentity, nil
	}

	tier := TierBase
	switch {
	case strings.HasSuffix(s, "+100"):
		tier = TierPlus100
		s = strings.TrimSuffix(s, "+100")
	case strings.HasSuffix(s, "+50"):
		tier = TierPlus50
		s = strings.TrimSuffix(s, "+50")
	}

	ws, hs, ok := strings.Cut(s, ":")
	if !ok {
		return Preset{}, fmt.Errorf("invalid preset %q: expected W:H[+50|+100]", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return Preset{}, fmt.Errorf("invalid preset ratio width %q", ws)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return Preset{}, fmt.Errorf("invalid preset ratio height %q", hs)
	}
	return newRatioPreset(w, h, tier), nil
}
