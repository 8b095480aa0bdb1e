package canvas

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
)

const compositeMimeType = "image/png"

// DecodeOriginal はアップロードされたバイト列を検証し、寸法付きの OriginalImage を作成します。
// デコードできない場合は ImageLoadError、MaxDimension を超える場合は ConfigurationError を返します。
func DecodeOriginal(data []byte, source string) (*domain.OriginalImage, error) {
	if len(data) == 0 {
		return nil, domain.NewImageLoadError("image data is empty", nil)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewImageLoadError("failed to decode image", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, domain.NewImageLoadError(fmt.Sprintf("invalid image size %dx%d", cfg.Width, cfg.Height), nil)
	}
	if cfg.Width > domain.MaxDimension || cfg.Height > domain.MaxDimension {
		return nil, domain.NewConfigurationError(
			fmt.Sprintf("image is %dx%d; the maximum is %dx%d", cfg.Width, cfg.Height, domain.MaxDimension, domain.MaxDimension))
	}

	return &domain.OriginalImage{
		Data:     data,
		MimeType: "image/" + format,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Source:   source,
	}, nil
}

// RenderComposite は target サイズの透明キャンバスを作り、元画像を拡大縮小せずに中央へ配置します。
// 元画像以外の画素はすべて完全透明のまま残ります。
func RenderComposite(original domain.OriginalImage, target domain.Size) (*domain.CompositeImage, error) {
	if !target.Contains(original.Size()) {
		return nil, domain.NewConfigurationError(
			fmt.Sprintf("target %dx%d is smaller than the original %dx%d", target.Width, target.Height, original.Width, original.Height))
	}
	if target.Width > domain.MaxDimension || target.Height > domain.MaxDimension {
		return nil, domain.NewConfigurationError(
			fmt.Sprintf("target %dx%d exceeds the maximum %d", target.Width, target.Height, domain.MaxDimension))
	}

	src, err := imaging.Decode(bytes.NewReader(original.Data))
	if err != nil {
		return nil, domain.NewImageLoadError("failed to decode original image", err)
	}

	b := src.Bounds()
	x, y := CenterOffset(domain.Size{Width: b.Dx(), Height: b.Dy()}, target)
	offset := image.Pt(x, y)

	bg := imaging.New(target.Width, target.Height, image.Transparent)
	composite := imaging.Paste(bg, src, offset)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, composite, imaging.PNG); err != nil {
		return nil, fmt.Errorf("合成画像のエンコードに失敗しました: %w", err)
	}

	return &domain.CompositeImage{
		Data:     buf.Bytes(),
		MimeType: compositeMimeType,
		Size:     target,
		Offset:   offset,
	}, nil
}
