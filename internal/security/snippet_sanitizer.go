// Package security はアプリケーションのセキュリティ機能を提供する。
//
// SnippetSanitizer は上流メールサービスが返す本文プレビューを
// プレーンテキストに落とし、HTML断片がそのままダッシュボードの
// レスポンスへ流れることを防ぐ。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// SnippetSanitizer はメールスニペットのサニタイズ機能を提供する。
// bluemondayのStrictPolicy（全タグ除去）を保持し、スレッドセーフに動作する。
type SnippetSanitizer struct {
	policy *bluemonday.Policy
}

// NewSnippetSanitizer はSnippetSanitizerの新しいインスタンスを生成する。
func NewSnippetSanitizer() *SnippetSanitizer {
	return &SnippetSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はスニペットから全HTMLタグを除去したプレーンテキストを返す。
// bluemondayがエスケープしたエンティティは表示用に復元し、
// 前後の空白を取り除く。空文字列の入力には空文字列を返す。
func (s *SnippetSanitizer) Sanitize(snippet string) string {
	if snippet == "" {
		return ""
	}
	stripped := s.policy.Sanitize(snippet)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
