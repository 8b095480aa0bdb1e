package domain

import (
	"image"
	"time"
)

// MaxDimension はキャンバスの一辺に許容される最大ピクセル数です。
const MaxDimension = 4096

// Size は画像やキャンバスの幅と高さ（ピクセル）です。
type Size struct {
	Width  int
	Height int
}

// Equal は幅と高さが一致するかどうかを返します。
func (s Size) Equal(o Size) bool {
	return s.Width == o.Width && s.Height == o.Height
}

// Contains は s が o を切り取りなしで内包できるかどうかを返します。
func (s Size) Contains(o Size) bool {
	return s.Width >= o.Width && s.Height >= o.Height
}

// OriginalImage はアップロードされた元画像です。セッション中は不変として扱います。
type OriginalImage struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
	Source   string // ファイルパスや URL など、読み込み元の識別子
}

// Size は元画像の寸法を返します。
func (o OriginalImage) Size() Size {
	return Size{Width: o.Width, Height: o.Height}
}

// CompositeImage は元画像を透明キャンバスの中央に等倍で配置した合成画像です。
// 生成リクエストごとに作り直され、保存はされません。
type CompositeImage struct {
	Data     []byte
	MimeType string
	Size     Size
	Offset   image.Point // キャンバス上での元画像の左上座標
}

// ExpansionRequest は 1 回の拡張生成呼び出しに必要な入力です。
type ExpansionRequest struct {
	Composite CompositeImage
	Prompt    string
	APIKey    APIKey
}

// GeneratedImage は生成結果の 1 枚です。作成後は変更しません。
type GeneratedImage struct {
	ID        string
	Data      []byte
	MimeType  string
	CreatedAt time.Time
}
