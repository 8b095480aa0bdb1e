package domain

import "strings"

// KeyProvenance は API キーがどこから供給されたかを表します。
type KeyProvenance string

const (
	KeyProvenanceNone        KeyProvenance = "none"
	KeyProvenanceEnvironment KeyProvenance = "environment"
	KeyProvenanceUserStored  KeyProvenance = "user-stored"
)

// APIKey は認証情報とその供給元です。
type APIKey struct {
	Value      string
	Provenance KeyProvenance
}

// Configured は供給元に関係なく、空でないキーを保持しているかどうかを返します。
func (k APIKey) Configured() bool {
	return strings.TrimSpace(k.Value) != ""
}

// String はログ出力でキーが漏れないようにマスクした表現を返します。
func (k APIKey) String() string {
	if !k.Configured() {
		return "<unset>"
	}
	v := strings.TrimSpace(k.Value)
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}
