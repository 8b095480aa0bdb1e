package generator

import (
	"iter"
	"slices"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
)

const (
	// DefaultModel は画像の入出力に対応した Gemini モデルです。
	DefaultModel = "gemini-2.5-flash-image-preview"

	responseModalityImage = "IMAGE"
	responseModalityText  = "TEXT"
)

// Result は 1 回の拡張生成で得られた画像群です。
// レスポンスに含まれた画像パーツの順序を保持します。
type Result struct {
	images []domain.GeneratedImage
}

// All は生成画像を順に返すシーケンスです。何度でも最初から走査できます。
func (r *Result) All() iter.Seq2[int, domain.GeneratedImage] {
	return func(yield func(int, domain.GeneratedImage) bool) {
		for i, img := range r.images {
			if !yield(i, img) {
				return
			}
		}
	}
}

// Images は生成画像のコピーを返します。
func (r *Result) Images() []domain.GeneratedImage {
	return slices.Clone(r.images)
}

// Len は生成画像の枚数を返します。
func (r *Result) Len() int {
	return len(r.images)
}
