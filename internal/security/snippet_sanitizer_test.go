package security

import "testing"

func TestSnippetSanitizer_Sanitize_RemovesHTMLTags(t *testing.T) {
	s := NewSnippetSanitizer()

	got := s.Sanitize("<p>Please review the <strong>attached</strong> document.</p>")
	want := "Please review the attached document."
	if got != want {
		t.Errorf("Sanitize = %q, want %q", got, want)
	}
}

func TestSnippetSanitizer_Sanitize_RemovesScript(t *testing.T) {
	s := NewSnippetSanitizer()

	got := s.Sanitize(`Meeting at 2pm<script>alert("x")</script>`)
	if got != "Meeting at 2pm" {
		t.Errorf("scriptタグが除去されていない: %q", got)
	}
}

func TestSnippetSanitizer_Sanitize_EmptyInput(t *testing.T) {
	s := NewSnippetSanitizer()

	if got := s.Sanitize(""); got != "" {
		t.Errorf("空入力の結果 = %q, want 空文字列", got)
	}
}

func TestSnippetSanitizer_Sanitize_PlainTextUnchanged(t *testing.T) {
	s := NewSnippetSanitizer()

	in := "Invoice #12345 is due for payment in 3 days."
	if got := s.Sanitize(in); got != in {
		t.Errorf("プレーンテキストが変更された: %q", got)
	}
}

func TestSnippetSanitizer_Sanitize_Idempotent(t *testing.T) {
	s := NewSnippetSanitizer()

	once := s.Sanitize("<div>quarterly <em>report</em></div>")
	twice := s.Sanitize(once)
	if once != twice {
		t.Errorf("冪等でない: once=%q twice=%q", once, twice)
	}
}
