package history

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
	"github.com/shouni/gemini-outpaint-kit/pkg/imgutil"
)

// ExportOptions は書き出し時の変換設定です。
type ExportOptions struct {
	// JPEGQuality が 0 より大きければ JPEG に変換して書き出します。
	JPEGQuality int
}

// FileName は画像の保存用ファイル名を返します。
func FileName(img domain.GeneratedImage, opts ExportOptions) string {
	ext := imgutil.ExtensionFor(img.MimeType, img.Data)
	if opts.JPEGQuality > 0 {
		ext = "jpg"
	}
	return fmt.Sprintf("expanded-%s.%s", img.ID, ext)
}

func encode(img domain.GeneratedImage, opts ExportOptions) ([]byte, error) {
	if opts.JPEGQuality <= 0 {
		return img.Data, nil
	}
	data, err := imgutil.CompressToJPEG(img.Data, opts.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("画像 %s のJPEG変換に失敗しました: %w", img.ID, err)
	}
	return data, nil
}

// SaveOne は 1 枚を dir に書き出し、書き出したパスを返します。
func SaveOne(dir string, img domain.GeneratedImage, opts ExportOptions) (string, error) {
	data, err := encode(img, opts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	path := filepath.Join(dir, FileName(img, opts))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("画像の書き込みに失敗しました: %w", err)
	}
	return path, nil
}

// SaveAll は images を順に dir へ書き出します。
func SaveAll(dir string, images []domain.GeneratedImage, opts ExportOptions) ([]string, error) {
	paths := make([]string, 0, len(images))
	for _, img := range images {
		path, err := SaveOne(dir, img, opts)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteZip は images を 1 つの zip アーカイブとして w に書き出します。
func WriteZip(w io.Writer, images []domain.GeneratedImage, opts ExportOptions) error {
	zw := zip.NewWriter(w)
	for _, img := range images {
		data, err := encode(img, opts)
		if err != nil {
			zw.Close()
			return err
		}

		modified := img.CreatedAt
		if modified.IsZero() {
			modified = time.Now()
		}
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     FileName(img, opts),
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("zipエントリの作成に失敗しました: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			zw.Close()
			return fmt.Errorf("zipへの書き込みに失敗しました: %w", err)
		}
	}
	return zw.Close()
}
