package generator

import (
	"context"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// GenerativeModel は拡張生成で利用する Gemini 通信の最小単位です。
// go-gemini-client の gemini.GenerativeModel もこのインターフェースを満たします。
type GenerativeModel interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

var _ GenerativeModel = (gemini.GenerativeModel)(nil)

// ModelFactory は API キーごとに GenerativeModel を作成します。
// キーは呼び出しごとに渡されるため、クライアントもリクエスト単位で作ります。
type ModelFactory func(ctx context.Context, apiKey string) (GenerativeModel, error)

// Expander はビジネスロジック層が利用する拡張生成の窓口です。
type Expander interface {
	Expand(ctx context.Context, req domain.ExpansionRequest) (*Result, error)
}
