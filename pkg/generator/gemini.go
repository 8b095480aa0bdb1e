package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// GeminiOutpainter は合成画像と指示文を Gemini に送り、拡張後の画像を受け取るジェネレーターです。
// 自動リトライやタイムアウトは行いません。中断は呼び出し元の context に任せます。
type GeminiOutpainter struct {
	newModel     ModelFactory
	model        string
	systemPrompt string
	classifier   *Classifier
	newID        func() string
	now          func() time.Time
}

// Option は GeminiOutpainter の設定を変更します。
type Option func(*GeminiOutpainter)

// WithClassifier はエラー分類器を差し替えます。
func WithClassifier(c *Classifier) Option {
	return func(g *GeminiOutpainter) {
		g.classifier = c
	}
}

// WithSystemPrompt はリクエストに付与するシステムプロンプトを設定します。
func WithSystemPrompt(prompt string) Option {
	return func(g *GeminiOutpainter) {
		g.systemPrompt = prompt
	}
}

// WithIDGenerator は生成画像の ID の採番方法を差し替えます。
func WithIDGenerator(fn func() string) Option {
	return func(g *GeminiOutpainter) {
		g.newID = fn
	}
}

// NewGeminiOutpainter は GeminiOutpainter を初期化します。model が空なら DefaultModel を使います。
func NewGeminiOutpainter(factory ModelFactory, model string, opts ...Option) (*GeminiOutpainter, error) {
	if factory == nil {
		return nil, fmt.Errorf("factory (ModelFactory) is required")
	}
	if model == "" {
		model = DefaultModel
	}

	g := &GeminiOutpainter{
		newModel:   factory,
		model:      model,
		classifier: NewClassifier(),
		newID:      uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Model は使用するモデル名を返します。
func (g *GeminiOutpainter) Model() string {
	return g.model
}

// Expand は 1 回の往復で拡張生成を行い、返ってきた画像パーツをすべて Result にまとめます。
// API キーが空の場合は通信を行わずに ConfigurationError を返します。
func (g *GeminiOutpainter) Expand(ctx context.Context, req domain.ExpansionRequest) (res *Result, err error) {
	if !req.APIKey.Configured() {
		return nil, domain.NewConfigurationError("API key not configured")
	}

	imgPart := toPart(req.Composite.Data, req.Composite.MimeType)
	if imgPart == nil {
		return nil, domain.NewImageLoadError("composite is not a valid image", nil)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "拡張生成中にパニックが発生しました", "panic", r)
			res = nil
			err = domain.NewUnknownError(fmt.Errorf("panic: %v", r))
		}
	}()

	model, err := g.newModel(ctx, strings.TrimSpace(req.APIKey.Value))
	if err != nil {
		return nil, g.classifier.Classify(err)
	}

	parts := []*genai.Part{
		{Text: req.Prompt},
		imgPart,
	}

	slog.InfoContext(ctx, "Geminiに拡張生成をリクエストします",
		"model", g.model,
		"canvas", fmt.Sprintf("%dx%d", req.Composite.Size.Width, req.Composite.Size.Height),
		"key_provenance", req.APIKey.Provenance,
	)

	resp, err := model.GenerateWithParts(ctx, g.model, parts, gemini.GenerateOptions{SystemPrompt: g.systemPrompt})
	if err != nil {
		classified := g.classifier.Classify(err)
		slog.WarnContext(ctx, "Geminiでの拡張生成に失敗しました", "kind", domain.KindOf(classified), "error", err)
		return nil, classified
	}

	images, err := g.parseResponse(resp)
	if err != nil {
		slog.WarnContext(ctx, "レスポンスに画像が含まれていませんでした", "kind", domain.KindOf(err), "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "拡張生成が完了しました", "images", len(images))
	return &Result{images: images}, nil
}
