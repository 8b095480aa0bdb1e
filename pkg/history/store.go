// Package history はセッション中の生成結果を新しい順に保持します。
package history

import (
	"slices"
	"sync"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
)

// Store は生成画像の追記専用リストです。
// 再生成でも既存の結果は上書き・削除されず、容量の上限もありません。
type Store struct {
	mu     sync.RWMutex
	images []domain.GeneratedImage
}

// NewStore は空の Store を作成します。
func NewStore() *Store {
	return &Store{}
}

// Append はバッチ内の順序を保ったまま、リストの先頭に images を追加します。
func (s *Store) Append(images ...domain.GeneratedImage) {
	if len(images) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = slices.Concat(images, s.images)
}

// List は新しい順のコピーを返します。
func (s *Store) List() []domain.GeneratedImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.images)
}

// Get は ID に一致する画像を返します。
func (s *Store) Get(id string) (domain.GeneratedImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.images, func(img domain.GeneratedImage) bool { return img.ID == id })
	if i < 0 {
		return domain.GeneratedImage{}, false
	}
	return s.images[i], true
}

// Len は保持している画像の枚数です。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// Reset はセッションのリセット時にすべての画像を破棄します。
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = nil
}
