package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
)

func batch(prefix string, n int) []domain.GeneratedImage {
	out := make([]domain.GeneratedImage, n)
	for i := range out {
		out[i] = domain.GeneratedImage{ID: fmt.Sprintf("%s%d", prefix, i), MimeType: "image/png", Data: []byte(prefix)}
	}
	return out
}

func ids(images []domain.GeneratedImage) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = img.ID
	}
	return out
}

func TestStore_Append(t *testing.T) {
	t.Run("新しいバッチが先頭に入り、バッチ内の順序は保たれる", func(t *testing.T) {
		s := NewStore()
		a := batch("a", 2)
		b := batch("b", 3)

		s.Append(a...)
		s.Append(b...)

		assert.Equal(t, []string{"b0", "b1", "b2", "a0", "a1"}, ids(s.List()))
		assert.Equal(t, 5, s.Len())
	})

	t.Run("空のバッチは何もしない", func(t *testing.T) {
		s := NewStore()
		s.Append(batch("a", 1)...)
		s.Append()
		assert.Equal(t, []string{"a0"}, ids(s.List()))
	})

	t.Run("同じIDでも重複排除しない", func(t *testing.T) {
		s := NewStore()
		s.Append(batch("a", 1)...)
		s.Append(batch("a", 1)...)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("List の戻り値を変更しても Store には影響しない", func(t *testing.T) {
		s := NewStore()
		s.Append(batch("a", 1)...)
		list := s.List()
		list[0].ID = "changed"
		assert.Equal(t, "a0", s.List()[0].ID)
	})

	t.Run("呼び出し元のスライスを変更しても Store には影響しない", func(t *testing.T) {
		s := NewStore()
		a := batch("a", 2)
		s.Append(a...)
		a[0].ID = "changed"
		assert.Equal(t, []string{"a0", "a1"}, ids(s.List()))
	})
}

func TestStore_GetAndReset(t *testing.T) {
	s := NewStore()
	s.Append(batch("a", 2)...)

	img, ok := s.Get("a1")
	assert.True(t, ok)
	assert.Equal(t, "a1", img.ID)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	s.Reset()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.List())
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(batch(fmt.Sprintf("g%d-", i), 2)...)
			_ = s.List()
		}()
	}
	wg.Wait()
	assert.Equal(t, 40, s.Len())
}
