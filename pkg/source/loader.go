// Package source は元画像をローカルファイル、HTTP(S)、GCS から読み込みます。
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shouni/gemini-outpaint-kit/pkg/canvas"
	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

const cacheKeySource = "source:"

// HTTPClient は URL からデータを取得するためのインターフェースです。
// go-http-kit の httpkit.ClientInterface がこれを満たします。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

var _ HTTPClient = (httpkit.ClientInterface)(nil)

// Reader は gs:// などのリモートストレージを開くためのインターフェースです。
type Reader interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

var _ Reader = (remoteio.InputReader)(nil)

// ImageCacher は取得済みの画像バイト列をキャッシュします。
type ImageCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// Loader は元画像の取得とデコードを担当します。
type Loader struct {
	httpClient HTTPClient
	reader     Reader
	cache      ImageCacher
	expiration time.Duration
	urlCheck   func(string) (bool, error)
}

// NewLoader は依存関係を注入して Loader を初期化します。
// httpClient・reader・cache はいずれも nil を許容し、その場合は該当する読み込み元が使えなくなります。
func NewLoader(httpClient HTTPClient, reader Reader, cache ImageCacher, cacheTTL time.Duration) *Loader {
	return &Loader{
		httpClient: httpClient,
		reader:     reader,
		cache:      cache,
		expiration: cacheTTL,
		urlCheck:   IsSafeURL,
	}
}

// Load は ref から画像を読み込み、寸法付きの OriginalImage を返します。
// ref はローカルパス、http(s):// URL、gs:// URI のいずれかです。
func (l *Loader) Load(ctx context.Context, ref string) (*domain.OriginalImage, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.NewConfigurationError("no image source specified")
	}

	data, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	original, err := canvas.DecodeOriginal(data, ref)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "元画像を読み込みました", "source", ref, "width", original.Width, "height", original.Height, "mime_type", original.MimeType)
	return original, nil
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "gs://"):
		return l.fetchCached(ctx, ref, l.fetchRemote)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetchCached(ctx, ref, l.fetchHTTP)
	case l.reader != nil:
		return l.readAll(ctx, ref)
	default:
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, domain.NewImageLoadError("failed to read image file", err)
		}
		return data, nil
	}
}

func (l *Loader) fetchCached(ctx context.Context, ref string, fetch func(context.Context, string) ([]byte, error)) ([]byte, error) {
	key := cacheKeySource + ref
	if l.cache != nil {
		if cached, found := l.cache.Get(key); found {
			if data, ok := cached.([]byte); ok {
				return data, nil
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "source", ref, "type", fmt.Sprintf("%T", cached))
		}
	}

	data, err := fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		l.cache.Set(key, data, l.expiration)
	}
	return data, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	if l.httpClient == nil {
		return nil, domain.NewConfigurationError("http sources are not enabled")
	}
	if safe, err := l.urlCheck(rawURL); err != nil || !safe {
		slog.WarnContext(ctx, "SSRFの可能性がある、または不正なURLをブロックしました", "url", rawURL, "error", err)
		reason := "private or reserved address"
		if err != nil {
			reason = err.Error()
		}
		return nil, domain.NewConfigurationError("unsafe image URL: " + reason)
	}

	data, err := l.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, domain.NewImageLoadError("failed to download image", err)
	}
	return data, nil
}

func (l *Loader) fetchRemote(ctx context.Context, uri string) ([]byte, error) {
	if l.reader == nil {
		return nil, domain.NewConfigurationError("gs:// sources are not enabled")
	}
	return l.readAll(ctx, uri)
}

// readAll は reader 経由でローカルパスまたはリモート URI を読み込みます。
func (l *Loader) readAll(ctx context.Context, ref string) ([]byte, error) {
	rc, err := l.reader.Open(ctx, ref)
	if err != nil {
		return nil, domain.NewImageLoadError("failed to open image", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, domain.NewImageLoadError("failed to read image", err)
	}
	return data, nil
}
