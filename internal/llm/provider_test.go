package llm

import "testing"

func TestResponseText(t *testing.T) {
	t.Parallel()

	resp := &Response{
		Content: []ContentBlock{
			{Type: "text", Text: "hello "},
			{Type: "thinking", Text: "ignored"},
			{Type: "text", Text: "world"},
		},
	}
	if got := resp.Text(); got != "hello world" {
		t.Fatalf("Text() = %q", got)
	}

	var nilResp *Response
	if got := nilResp.Text(); got != "" {
		t.Fatalf("nil Text() = %q", got)
	}
	if got := (&Response{}).Text(); got != "" {
		t.Fatalf("empty Text() = %q", got)
	}
}
