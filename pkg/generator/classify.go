package generator

import (
	"errors"
	"strings"
	"sync"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
	"google.golang.org/genai"
)

// PermissionHint は認証エラー時に利用者へ提示する対処方法です。
const PermissionHint = "Check that your Gemini API key is correct, enabled, and allowed to use the image model."

// Signature は既知のエラー文言やステータスコードを分類に対応付けます。
// Substrings は大文字小文字を区別せずに照合します。
type Signature struct {
	Kind        domain.ErrorKind
	Substrings  []string
	StatusCodes []int
	Hint        string
}

func (s Signature) matches(msg string, status int) bool {
	if status != 0 {
		for _, code := range s.StatusCodes {
			if code == status {
				return true
			}
		}
	}
	lower := strings.ToLower(msg)
	for _, sub := range s.Substrings {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// DefaultSignatures は標準で認識するエラーシグネチャです。
var DefaultSignatures = []Signature{
	{
		Kind: domain.KindPermission,
		Substrings: []string{
			"api key not valid",
			"api_key_invalid",
			"invalid api key",
			"api key expired",
			"permission_denied",
			"permission denied",
			"unauthenticated",
		},
		StatusCodes: []int{401, 403},
		Hint:        PermissionHint,
	},
}

// Classifier は通信層のエラーを domain のエラー分類に変換します。
type Classifier struct {
	mu         sync.RWMutex
	signatures []Signature
}

// NewClassifier は DefaultSignatures に extra を加えた Classifier を作成します。
func NewClassifier(extra ...Signature) *Classifier {
	sigs := make([]Signature, 0, len(DefaultSignatures)+len(extra))
	sigs = append(sigs, DefaultSignatures...)
	sigs = append(sigs, extra...)
	return &Classifier{signatures: sigs}
}

// Register はシグネチャを追加します。先に登録されたものが優先されます。
func (c *Classifier) Register(sig Signature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signatures = append(c.signatures, sig)
}

// Classify は err を分類付きエラーに変換します。
// すでに分類済みのエラーはそのまま返し、どのシグネチャにも一致しなければ RemoteServiceError、
// メッセージが空であれば UnknownError になります。
func (c *Classifier) Classify(err error) error {
	if err == nil {
		return nil
	}
	var classified *domain.Error
	if errors.As(err, &classified) {
		return err
	}

	msg := err.Error()
	status := statusCode(err)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, sig := range c.signatures {
		if sig.matches(msg, status) {
			return newKindError(sig, err)
		}
	}

	if strings.TrimSpace(msg) == "" {
		return domain.NewUnknownError(err)
	}
	return domain.NewRemoteServiceError(err)
}

func newKindError(sig Signature, cause error) *domain.Error {
	switch sig.Kind {
	case domain.KindPermission:
		return domain.NewPermissionError(sig.Hint, cause)
	case domain.KindRemoteService:
		return domain.NewRemoteServiceError(cause)
	case domain.KindUnknown:
		return domain.NewUnknownError(cause)
	default:
		return &domain.Error{Kind: sig.Kind, Msg: string(sig.Kind), Hint: sig.Hint, Cause: cause}
	}
}

// statusCode は genai の APIError から HTTP ステータスを取り出します。
func statusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
