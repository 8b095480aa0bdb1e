package generator

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// toPart は合成画像のバイト列を genai.Part (InlineData) に変換します。
// 画像として判定できない場合は nil を返します。
func toPart(data []byte, mimeType string) *genai.Part {
	detected := http.DetectContentType(data)
	if !strings.HasPrefix(detected, "image/") {
		return nil
	}
	if mimeType == "" {
		mimeType = detected
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}
}

// parseResponse はレスポンスを順に検査し、画像パーツを 1 枚ずつ GeneratedImage に変換します。
// 全候補の全画像パーツを対象とし、先頭の 1 枚に絞ることはしません。
func (g *GeminiOutpainter) parseResponse(resp *gemini.Response) ([]domain.GeneratedImage, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		var raw *genai.GenerateContentResponse
		if resp != nil {
			raw = resp.RawResponse
		}
		return nil, domain.NewEmptyResponseError(promptFeedbackReason(raw))
	}

	raw := resp.RawResponse
	var images []domain.GeneratedImage
	var texts []string
	for _, candidate := range raw.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				images = append(images, g.newImage(part.InlineData))
				continue
			}
			if text := strings.TrimSpace(part.Text); text != "" && !part.Thought {
				texts = append(texts, text)
			}
		}
	}

	if len(images) > 0 {
		return images, nil
	}
	if explanation := blockExplanation(raw, texts); explanation != "" {
		return nil, domain.NewContentBlockedError(explanation)
	}
	return nil, domain.NewNoImageDataError()
}

func (g *GeminiOutpainter) newImage(blob *genai.Blob) domain.GeneratedImage {
	mimeType := blob.MIMEType
	if mimeType == "" {
		mimeType = http.DetectContentType(blob.Data)
	}
	return domain.GeneratedImage{
		ID:        g.newID(),
		Data:      blob.Data,
		MimeType:  mimeType,
		CreatedAt: g.now(),
	}
}

// blockExplanation は画像が返らなかった理由をサービスの応答から取り出します。
// テキストパーツがあればそれをそのまま使い、なければブロック理由と終了理由を参照します。
func blockExplanation(raw *genai.GenerateContentResponse, texts []string) string {
	if len(texts) > 0 {
		return strings.Join(texts, "\n")
	}
	if reason := promptFeedbackReason(raw); reason != "" {
		return reason
	}
	for _, candidate := range raw.Candidates {
		if candidate == nil || candidate.FinishReason == "" {
			continue
		}
		if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
			if candidate.FinishMessage != "" {
				return fmt.Sprintf("%s: %s", candidate.FinishReason, candidate.FinishMessage)
			}
			return fmt.Sprintf("generation finished with reason %s", candidate.FinishReason)
		}
	}
	return ""
}

func promptFeedbackReason(raw *genai.GenerateContentResponse) string {
	if raw == nil || raw.PromptFeedback == nil || raw.PromptFeedback.BlockReason == "" {
		return ""
	}
	if msg := raw.PromptFeedback.BlockReasonMessage; msg != "" {
		return fmt.Sprintf("%s: %s", raw.PromptFeedback.BlockReason, msg)
	}
	return fmt.Sprintf("prompt blocked: %s", raw.PromptFeedback.BlockReason)
}
