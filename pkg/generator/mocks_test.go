package generator

import (
	"context"
	"fmt"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// --- Mocks ---

type mockModel struct {
	calls        int
	lastModel    string
	lastParts    []*genai.Part
	lastOpts     gemini.GenerateOptions
	generateFunc func(ctx context.Context, parts []*genai.Part) (*gemini.Response, error)
}

func (m *mockModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.calls++
	m.lastModel = model
	m.lastParts = parts
	m.lastOpts = opts
	if m.generateFunc != nil {
		return m.generateFunc(ctx, parts)
	}
	return imageResponse("image/png", []byte("fake")), nil
}

// mockFactory は作成回数と渡されたキーを記録する ModelFactory を返します。
type mockFactory struct {
	calls   int
	lastKey string
	model   *mockModel
	err     error
}

func (f *mockFactory) factory() ModelFactory {
	return func(ctx context.Context, apiKey string) (GenerativeModel, error) {
		f.calls++
		f.lastKey = apiKey
		if f.err != nil {
			return nil, f.err
		}
		return f.model, nil
	}
}

// sequentialIDs はテスト用に連番の ID を払い出します。
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("img-%d", n)
	}
}

// --- Response builders ---

func imageResponse(mimeType string, payloads ...[]byte) *gemini.Response {
	parts := make([]*genai.Part, 0, len(payloads))
	for _, p := range payloads {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: p}})
	}
	return candidatesResponse(&genai.Candidate{Content: &genai.Content{Parts: parts}})
}

func candidatesResponse(candidates ...*genai.Candidate) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{Candidates: candidates},
	}
}
