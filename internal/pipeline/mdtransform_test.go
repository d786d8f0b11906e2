package pipeline

import (
	"context"
	"testing"
)

func TestCommonMarkPreprocessor_PreprocessMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "unchanged", input: "# Title\n\nBody\n", want: "# Title\n\nBody\n"},
		{name: "crlf", input: "a\r\nb\r\n", want: "a\nb\n"},
		{name: "lone cr", input: "a\rb", want: "a\nb"},
		{name: "bom stripped", input: "\uFEFF# Title", want: "# Title"},
		{name: "two blank lines kept", input: "a\n\n\nb", want: "a\n\n\nb"},
		{name: "long blank run collapsed", input: "a\n\n\n\n\n\nb", want: "a\n\n\nb"},
		{name: "crlf blank run collapsed", input: "a\r\n\r\n\r\n\r\n\r\nb", want: "a\n\n\nb"},
	}

	p := &CommonMarkPreprocessor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := p.PreprocessMarkdown(context.Background(), tt.input); got != tt.want {
				t.Errorf("PreprocessMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCommonMarkPreprocessor_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &CommonMarkPreprocessor{}
	if got := p.PreprocessMarkdown(ctx, "a\r\nb"); got != "a\r\nb" {
		t.Errorf("PreprocessMarkdown() = %q, want input unchanged", got)
	}
}
