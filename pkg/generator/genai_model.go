package generator

import (
	"context"
	"fmt"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// genaiModel は google.golang.org/genai を直接使う GenerativeModel の実装です。
// 画像とテキストが混在した応答を要求します。
type genaiModel struct {
	client *genai.Client
}

// NewGenaiModelFactory は API キーごとに Gemini API バックエンドのクライアントを作る ModelFactory を返します。
func NewGenaiModelFactory() ModelFactory {
	return func(ctx context.Context, apiKey string) (GenerativeModel, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("Geminiクライアントの初期化に失敗しました: %w", err)
		}
		return &genaiModel{client: client}, nil
	}
}

// GenerateWithParts はパーツ群を 1 つのユーザー発話として送信します。
func (m *genaiModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{responseModalityImage, responseModalityText},
	}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := m.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, err
	}
	return &gemini.Response{RawResponse: resp}, nil
}
