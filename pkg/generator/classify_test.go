package generator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
	"google.golang.org/genai"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"API key not valid", errors.New("API key not valid. Please pass a valid API key."), domain.KindPermission},
		{"API_KEY_INVALID", errors.New("reason: API_KEY_INVALID"), domain.KindPermission},
		{"PERMISSION_DENIED", errors.New("rpc error: PERMISSION_DENIED"), domain.KindPermission},
		{"permission denied (小文字)", errors.New("permission denied for project"), domain.KindPermission},
		{"403 ステータス", genai.APIError{Code: 403, Message: "forbidden"}, domain.KindPermission},
		{"ラップされた 401", fmt.Errorf("call: %w", genai.APIError{Code: 401, Message: "x"}), domain.KindPermission},
		{"500 はリモートエラー", genai.APIError{Code: 500, Message: "internal"}, domain.KindRemoteService},
		{"その他", errors.New("connection reset by peer"), domain.KindRemoteService},
		{"空メッセージ", errors.New(""), domain.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.err)
			assert.Equal(t, tt.want, domain.KindOf(got))

			var de *domain.Error
			if assert.ErrorAs(t, got, &de) {
				assert.Equal(t, tt.err, de.Cause, "元のエラーを保持する")
			}
		})
	}

	t.Run("nil は nil", func(t *testing.T) {
		assert.NoError(t, c.Classify(nil))
	})

	t.Run("分類済みのエラーはそのまま", func(t *testing.T) {
		in := domain.NewNoImageDataError()
		assert.Same(t, in, c.Classify(in))
	})
}

func TestClassifier_Register(t *testing.T) {
	c := NewClassifier()
	c.Register(Signature{
		Kind:       domain.KindConfiguration,
		Substrings: []string{"model not found"},
		Hint:       "check GEMINI_MODEL",
	})

	err := c.Classify(errors.New("Error 404: Model not found"))

	assert.True(t, domain.IsKind(err, domain.KindConfiguration))
	var de *domain.Error
	if assert.ErrorAs(t, err, &de) {
		assert.Equal(t, "check GEMINI_MODEL", de.Hint)
	}

	t.Run("既定のシグネチャが優先される", func(t *testing.T) {
		err := c.Classify(errors.New("model not found: PERMISSION_DENIED"))
		assert.True(t, domain.IsKind(err, domain.KindPermission))
	})
}
