package markdown

import (
	"strings"
	"testing"
)

func TestGoldmarkRendererAlignsHeadingIDs(t *testing.T) {
	r := NewGoldmarkRenderer(GoldmarkOptions{})
	source := "## Hello World\n\n## Hello World\n\nBody text."

	out := r.Render(source)
	if !strings.Contains(out, `<h2 id="hello-world">Hello World</h2>`) {
		t.Fatalf("expected first heading anchor, got %q", out)
	}
	if !strings.Contains(out, `<h2 id="hello-world-2">Hello World</h2>`) {
		t.Fatalf("expected deduplicated anchor, got %q", out)
	}

	headings := r.Headings(source)
	if len(headings) != 2 || headings[1].ID != "hello-world-2" {
		t.Fatalf("unexpected headings %#v", headings)
	}
}

func TestGoldmarkRendererSanitisesOutput(t *testing.T) {
	r := NewGoldmarkRenderer(GoldmarkOptions{})
	out := r.Render("<script>alert(1)</script>\n\n[x](javascript:alert(1))")
	if strings.Contains(out, "<script") {
		t.Fatalf("script leaked: %q", out)
	}
	if strings.Contains(out, "javascript:") {
		t.Fatalf("javascript url leaked: %q", out)
	}
}

func TestGoldmarkRendererMergesParagraphLines(t *testing.T) {
	r := NewGoldmarkRenderer(GoldmarkOptions{})
	out := r.Render("one\ntwo")
	if strings.Count(out, "<p>") != 1 {
		t.Fatalf("expected a single CommonMark paragraph, got %q", out)
	}
}

func TestCollectExtensions(t *testing.T) {
	if got := collectExtensions(nil); len(got) != 3 {
		t.Fatalf("expected default extensions, got %d", len(got))
	}
	if got := collectExtensions([]string{"table", "TABLE", " footnote ", "unknown", ""}); len(got) != 2 {
		t.Fatalf("expected two distinct known extensions, got %d", len(got))
	}
}
