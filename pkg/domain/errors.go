package domain

import (
	"errors"
	"fmt"
)

// ErrorKind はエラーをユーザーへの見せ方と回復方法で分類します。
type ErrorKind string

const (
	// KindConfiguration は API キー未設定や寸法指定の誤りなど、利用者の操作で回復できるエラーです。
	KindConfiguration ErrorKind = "configuration"
	// KindImageLoad は元画像や合成画像をデコードできなかったことを表します。
	KindImageLoad ErrorKind = "image_load"
	// KindEmptyResponse は候補が 1 件も返らなかったことを表します。
	KindEmptyResponse ErrorKind = "empty_response"
	// KindNoImageData は候補はあるが画像パーツが含まれなかったことを表します。
	KindNoImageData ErrorKind = "no_image_data"
	// KindContentBlocked はサービス側がブロックや拒否の説明を返したことを表します。
	KindContentBlocked ErrorKind = "content_blocked"
	// KindPermission は認証情報が拒否されたことを表します。
	KindPermission ErrorKind = "permission"
	// KindRemoteService はその他のリモート側の失敗です。
	KindRemoteService ErrorKind = "remote_service"
	// KindUnknown は分類できなかった失敗です。
	KindUnknown ErrorKind = "unknown"
)

var (
	// ErrGenerationInProgress は生成中に次の生成要求が来たときに返されます。
	ErrGenerationInProgress = errors.New("a generation is already in progress")
	// ErrNoOriginal は元画像が読み込まれていない状態で操作したときに返されます。
	ErrNoOriginal = errors.New("no original image loaded")
)

// Error は分類付きのエラーです。
type Error struct {
	Kind   ErrorKind
	Msg    string
	Detail string // サービスが返した説明文など。ContentBlocked ではそのまま利用者に見せる
	Hint   string // 利用者向けの対処方法
	Cause  error
}

// Error はエラーメッセージを返します。
func (e *Error) Error() string {
	msg := e.Msg
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap は原因となったエラーを返します。
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewConfigurationError は設定・入力誤りのエラーを作成します。
func NewConfigurationError(msg string) *Error {
	return &Error{Kind: KindConfiguration, Msg: msg}
}

// NewImageLoadError は画像デコード失敗のエラーを作成します。
func NewImageLoadError(msg string, cause error) *Error {
	return &Error{Kind: KindImageLoad, Msg: msg, Cause: cause}
}

// NewEmptyResponseError は候補なし応答のエラーを作成します。
func NewEmptyResponseError(detail string) *Error {
	return &Error{Kind: KindEmptyResponse, Msg: "no content generated, possibly blocked", Detail: detail}
}

// NewNoImageDataError は画像パーツなし応答のエラーを作成します。
func NewNoImageDataError() *Error {
	return &Error{Kind: KindNoImageData, Msg: "no image data found in response"}
}

// NewContentBlockedError はサービスの説明文を保持したブロックエラーを作成します。
func NewContentBlockedError(explanation string) *Error {
	return &Error{Kind: KindContentBlocked, Msg: "content blocked by the service", Detail: explanation}
}

// NewPermissionError は認証拒否のエラーを作成します。
func NewPermissionError(hint string, cause error) *Error {
	return &Error{Kind: KindPermission, Msg: "permission denied by the service", Hint: hint, Cause: cause}
}

// NewRemoteServiceError はリモート側の失敗をラップします。
func NewRemoteServiceError(cause error) *Error {
	return &Error{Kind: KindRemoteService, Msg: "remote service error", Cause: cause}
}

// NewUnknownError は分類不能な失敗を表すエラーを作成します。
func NewUnknownError(cause error) *Error {
	return &Error{Kind: KindUnknown, Msg: "an unknown error occurred", Cause: cause}
}

// KindOf は err の分類を返します。分類付きでなければ KindUnknown です。
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind は err が指定の分類に属するかを返します。
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// UserMessage はエラーを画面表示用の 1 行の文字列に変換します。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrGenerationInProgress):
		return "A generation is already running. Please wait for it to finish."
	case errors.Is(err, ErrNoOriginal):
		return "Please upload an image first."
	}

	var e *Error
	if !errors.As(err, &e) {
		return "An unknown error occurred. Please try again."
	}

	switch e.Kind {
	case KindConfiguration:
		return e.Msg
	case KindImageLoad:
		return "The image could not be loaded. Please upload it again."
	case KindEmptyResponse:
		return "No content was generated. The request may have been blocked."
	case KindNoImageData:
		return "The service did not return an image. Please try again with a different instruction."
	case KindContentBlocked:
		if e.Detail != "" {
			return "The request was blocked: " + e.Detail
		}
		return "The request was blocked by the service."
	case KindPermission:
		if e.Hint != "" {
			return "The API key was rejected. " + e.Hint
		}
		return "The API key was rejected."
	case KindRemoteService:
		if e.Cause != nil {
			return "Image generation failed: " + e.Cause.Error()
		}
		return "Image generation failed."
	default:
		return "An unknown error occurred. Please try again."
	}
}
