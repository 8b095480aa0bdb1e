package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
)

// テスト用の不透明な単色画像を PNG で作成するヘルパー
func createSolidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestDecodeOriginal(t *testing.T) {
	t.Run("PNG の寸法と MIME を読み取る", func(t *testing.T) {
		data := createSolidPNG(t, 120, 80)

		got, err := DecodeOriginal(data, "test.png")

		require.NoError(t, err)
		assert.Equal(t, 120, got.Width)
		assert.Equal(t, 80, got.Height)
		assert.Equal(t, "image/png", got.MimeType)
		assert.Equal(t, "test.png", got.Source)
	})

	t.Run("画像でないデータは ImageLoadError", func(t *testing.T) {
		_, err := DecodeOriginal([]byte("this is not an image"), "x")
		assert.True(t, domain.IsKind(err, domain.KindImageLoad))
	})

	t.Run("空データは ImageLoadError", func(t *testing.T) {
		_, err := DecodeOriginal(nil, "x")
		assert.True(t, domain.IsKind(err, domain.KindImageLoad))
	})
}

func TestRenderComposite(t *testing.T) {
	t.Run("100x100 を 200x100 に広げると [50,150) の帯に元画像が入る", func(t *testing.T) {
		original, err := DecodeOriginal(createSolidPNG(t, 100, 100), "src.png")
		require.NoError(t, err)

		composite, err := RenderComposite(*original, domain.Size{Width: 200, Height: 100})
		require.NoError(t, err)
		assert.Equal(t, "image/png", composite.MimeType)
		assert.Equal(t, image.Pt(50, 0), composite.Offset)

		img, err := png.Decode(bytes.NewReader(composite.Data))
		require.NoError(t, err)
		require.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())

		for x := 0; x < 200; x++ {
			for _, y := range []int{0, 50, 99} {
				_, _, _, a := img.At(x, y).RGBA()
				if x >= 50 && x < 150 {
					assert.Equalf(t, uint32(0xffff), a, "pixel (%d,%d) should be opaque", x, y)
				} else {
					assert.Equalf(t, uint32(0), a, "pixel (%d,%d) should be transparent", x, y)
				}
			}
		}
	})

	t.Run("奇数の余白は左上側を切り捨てて中央に寄せる", func(t *testing.T) {
		original, err := DecodeOriginal(createSolidPNG(t, 10, 10), "src.png")
		require.NoError(t, err)

		composite, err := RenderComposite(*original, domain.Size{Width: 15, Height: 13})
		require.NoError(t, err)
		assert.Equal(t, image.Pt(2, 1), composite.Offset)
	})

	t.Run("元画像より小さいキャンバスは ConfigurationError", func(t *testing.T) {
		original := domain.OriginalImage{Data: createSolidPNG(t, 50, 50), Width: 50, Height: 50}
		_, err := RenderComposite(original, domain.Size{Width: 40, Height: 50})
		assert.True(t, domain.IsKind(err, domain.KindConfiguration))
	})

	t.Run("デコードできない元画像は ImageLoadError", func(t *testing.T) {
		original := domain.OriginalImage{Data: []byte("broken"), Width: 10, Height: 10}
		_, err := RenderComposite(original, domain.Size{Width: 20, Height: 20})
		assert.True(t, domain.IsKind(err, domain.KindImageLoad))
	})
}
