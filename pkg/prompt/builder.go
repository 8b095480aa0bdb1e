// Package prompt は拡張生成リクエスト用の指示文を組み立てます。
package prompt

import (
	"fmt"
	"math"
	"strings"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
)

// FullCanvasDirective は 1 行目に必ず含まれるキャンバス全面の塗りつぶし指示です。
const FullCanvasDirective = "fill the entire transparent area of the canvas"

const (
	extendSceneLine   = "Generate photorealistic content that naturally extends the existing scene beyond its current borders."
	keepOriginalLine  = "Do not alter the original content placed in the center of the canvas."
	preserveLine      = "Preserve the original content in the center of the canvas exactly as it is."
	matchStyleLine    = "Match the style, lighting, perspective, and level of detail of the original image."
	seamlessBlendLine = "Blend the new content seamlessly with the original so that no borders, seams, or frames remain visible."
)

// ExpansionPercentages は各軸の拡張率（%）を四捨五入して返します。
func ExpansionPercentages(original, target domain.Size) (width, height int) {
	return percent(original.Width, target.Width), percent(original.Height, target.Height)
}

func percent(original, target int) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round(float64(target-original) / float64(original) * 100))
}

// BuildPrompt は 5 行の番号付き指示文を返します。
// 1 行目は常に拡張率とキャンバス全面の塗りつぶし指示で、userInstruction があれば 2 行目に入ります。
// userInstruction 内の改行は空白 1 つにまとめられ、指示文は常に 5 行になります。
// 寸法が同じ場合の拒否は呼び出し側の責務で、ここでは特別扱いしません。
func BuildPrompt(original, target domain.Size, userInstruction string) string {
	wp, hp := ExpansionPercentages(original, target)
	e := max(wp, hp)

	first := fmt.Sprintf("Expand the image by %d%% and outpaint it to %s completely.", e, FullCanvasDirective)

	var lines []string
	if instruction := singleLine(userInstruction); instruction == "" {
		lines = []string{first, extendSceneLine, keepOriginalLine, matchStyleLine, seamlessBlendLine}
	} else {
		lines = []string{first, instruction, preserveLine, matchStyleLine, seamlessBlendLine}
	}

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, line)
	}
	return sb.String()
}

// singleLine は改行で区切られた各行を前後の空白を除いて空白 1 つで連結します。
func singleLine(s string) string {
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, " ")
}
