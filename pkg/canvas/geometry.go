package canvas

import (
	"math"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
)

// ComputeExpandedDimensions は元画像を切り取らずに内包する、プリセットどおりのキャンバス寸法を計算します。
// 結果は常に各軸で [元の寸法, domain.MaxDimension] に収まります。
// 上限を超えた軸は比率が崩れても MaxDimension に切り詰めます。
func ComputeExpandedDimensions(original domain.Size, p Preset) domain.Size {
	var w, h float64
	ow, oh := float64(original.Width), float64(original.Height)

	switch p.Kind {
	case KindSquare:
		side := math.Max(ow, oh) * p.Tier.Multiplier()
		w, h = side, side
	case KindRatio:
		ratio := float64(p.RatioW) / float64(p.RatioH)
		if ow/oh < ratio {
			// 横が足りないので幅を広げる
			w, h = math.Round(oh*ratio), oh
		} else {
			w, h = ow, math.Round(ow/ratio)
		}
		m := p.Tier.Multiplier()
		w, h = w*m, h*m
	default:
		w, h = ow, oh
	}

	return domain.Size{
		Width:  ClampDimension(int(math.Round(w)), original.Width),
		Height: ClampDimension(int(math.Round(h)), original.Height),
	}
}

// ClampDimension はスライダーや数値入力で指定された値を [original, domain.MaxDimension] に収めます。
func ClampDimension(value, original int) int {
	floor := min(original, domain.MaxDimension)
	return max(floor, min(value, domain.MaxDimension))
}

// ClampSize は ClampDimension を両軸に適用します。
func ClampSize(requested, original domain.Size) domain.Size {
	return domain.Size{
		Width:  ClampDimension(requested.Width, original.Width),
		Height: ClampDimension(requested.Height, original.Height),
	}
}

// CenterOffset は target の中央に original を置いたときの左上座標を返します。
func CenterOffset(original, target domain.Size) (x, y int) {
	return (target.Width - original.Width) / 2, (target.Height - original.Height) / 2
}
