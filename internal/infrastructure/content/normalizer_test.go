package content

import (
	"testing"

	"StoryScanner/internal/domain"
)

func TestNormalizeStripsHTML(t *testing.T) {
	t.Parallel()

	story := Normalize(domain.StoryContent{
		Title: "  Product   launch ",
		Body:  `<article><h1>Launch</h1><script>track()</script><p>The product ships <b>today</b>.</p></article>`,
	})

	if story.Title != "Product launch" {
		t.Fatalf("unexpected title: %q", story.Title)
	}
	if story.Body != "Launch The product ships today." {
		t.Fatalf("unexpected body: %q", story.Body)
	}
}

func TestNormalizePlainTextPassthrough(t *testing.T) {
	t.Parallel()

	story := Normalize(domain.StoryContent{Body: "plain   text\nwith   gaps"})
	if story.Body != "plain text with gaps" {
		t.Fatalf("unexpected body: %q", story.Body)
	}
}
