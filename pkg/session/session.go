// Package session は元画像の読み込みから拡張生成、履歴への追加までの流れをまとめます。
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shouni/gemini-outpaint-kit/pkg/canvas"
	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
	"github.com/shouni/gemini-outpaint-kit/pkg/generator"
	"github.com/shouni/gemini-outpaint-kit/pkg/history"
	"github.com/shouni/gemini-outpaint-kit/pkg/prompt"
)

// Session は 1 人の利用者の作業状態です。
// 生成は同時に 1 件までで、実行中に届いた生成要求は ErrGenerationInProgress で拒否します。
type Session struct {
	expander generator.Expander
	history  *history.Store

	mu              sync.Mutex
	original        *domain.OriginalImage
	target          domain.Size
	lastInstruction string

	busy atomic.Bool
}

// New は Session を作成します。store が nil なら新しい Store を使います。
func New(expander generator.Expander, store *history.Store) (*Session, error) {
	if expander == nil {
		return nil, fmt.Errorf("expander is required")
	}
	if store == nil {
		store = history.NewStore()
	}
	return &Session{expander: expander, history: store}, nil
}

// Load は元画像を差し替え、キャンバスを元画像と同じ寸法に戻します。履歴は残ります。
func (s *Session) Load(original *domain.OriginalImage) error {
	if original == nil || original.Width <= 0 || original.Height <= 0 {
		return domain.NewImageLoadError("invalid original image", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.original = original
	s.target = original.Size()
	s.lastInstruction = ""
	return nil
}

// Original は読み込み済みの元画像を返します。
func (s *Session) Original() (*domain.OriginalImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original, s.original != nil
}

// Target は現在のキャンバス寸法を返します。
func (s *Session) Target() domain.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// ApplyPreset はプリセットからキャンバス寸法を計算して設定します。
func (s *Session) ApplyPreset(p canvas.Preset) (domain.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.original == nil {
		return domain.Size{}, domain.ErrNoOriginal
	}
	s.target = canvas.ComputeExpandedDimensions(s.original.Size(), p)
	return s.target, nil
}

// SetWidth は幅を直接指定します。値は [元の幅, MaxDimension] に丸められます。
func (s *Session) SetWidth(w int) (domain.Size, error) {
	return s.resize(func(target *domain.Size, original domain.Size) {
		target.Width = canvas.ClampDimension(w, original.Width)
	})
}

// SetHeight は高さを直接指定します。値は [元の高さ, MaxDimension] に丸められます。
func (s *Session) SetHeight(h int) (domain.Size, error) {
	return s.resize(func(target *domain.Size, original domain.Size) {
		target.Height = canvas.ClampDimension(h, original.Height)
	})
}

func (s *Session) resize(apply func(target *domain.Size, original domain.Size)) (domain.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.original == nil {
		return domain.Size{}, domain.ErrNoOriginal
	}
	apply(&s.target, s.original.Size())
	return s.target, nil
}

// Generate は現在のキャンバスで拡張生成を行い、結果を履歴の先頭に追加して返します。
func (s *Session) Generate(ctx context.Context, instruction string, key domain.APIKey) ([]domain.GeneratedImage, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrGenerationInProgress
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	original, target := s.original, s.target
	s.mu.Unlock()

	if original == nil {
		return nil, domain.ErrNoOriginal
	}
	if target.Equal(original.Size()) {
		return nil, domain.NewConfigurationError("new dimensions are the same as the original")
	}

	composite, err := canvas.RenderComposite(*original, target)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastInstruction = instruction
	s.mu.Unlock()

	req := domain.ExpansionRequest{
		Composite: *composite,
		Prompt:    prompt.BuildPrompt(original.Size(), target, instruction),
		APIKey:    key,
	}

	slog.InfoContext(ctx, "拡張生成を開始します",
		"original", fmt.Sprintf("%dx%d", original.Width, original.Height),
		"target", fmt.Sprintf("%dx%d", target.Width, target.Height),
		"has_instruction", instruction != "",
	)

	res, err := s.expander.Expand(ctx, req)
	if err != nil {
		return nil, err
	}

	images := res.Images()
	s.history.Append(images...)
	return images, nil
}

// Regenerate は直前の指示でパイプライン全体をやり直します。以前の結果は残ったまま新しい結果が追加されます。
// 直前の生成が失敗していても、その指示が使われます。
func (s *Session) Regenerate(ctx context.Context, key domain.APIKey) ([]domain.GeneratedImage, error) {
	s.mu.Lock()
	instruction := s.lastInstruction
	s.mu.Unlock()
	return s.Generate(ctx, instruction, key)
}

// Pending は生成が実行中かどうかを返します。
func (s *Session) Pending() bool {
	return s.busy.Load()
}

// History は生成履歴を返します。
func (s *Session) History() *history.Store {
	return s.history
}

// Reset は元画像・キャンバス・履歴をすべて破棄します。
func (s *Session) Reset() {
	s.mu.Lock()
	s.original = nil
	s.target = domain.Size{}
	s.lastInstruction = ""
	s.mu.Unlock()
	s.history.Reset()
}
