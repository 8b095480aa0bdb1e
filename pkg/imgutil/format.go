package imgutil

import (
	"net/http"
	"strings"
)

// ExtensionFor は MIME タイプに対応するファイル拡張子（ドットなし）を返します。
// 不明な場合は内容から判定し、それでも分からなければ "png" とします。
func ExtensionFor(mimeType string, data []byte) string {
	if mimeType == "" && len(data) > 0 {
		mimeType = http.DetectContentType(data)
	}
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
