// Package content normalizes stored story bodies before scoring.
// Stories ingested from web sources often carry HTML; keyword density
// computed over markup would skew both scorers.
package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"StoryScanner/internal/domain"
)

// Normalize returns a copy of the story with markup stripped from the
// body and whitespace collapsed. Plain-text bodies pass through
// unchanged apart from whitespace normalization.
func Normalize(story domain.StoryContent) domain.StoryContent {
	story.Body = normalizeText(story.Body)
	story.Title = collapseWhitespace(story.Title)
	return story
}

func normalizeText(body string) string {
	if !strings.Contains(body, "<") {
		return collapseWhitespace(body)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return collapseWhitespace(body)
	}
	doc.Find("script, style").Remove()
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
