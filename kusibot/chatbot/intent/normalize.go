package intent

import (
	"regexp"
	"strings"
)

// The cleanup mirrors the preprocessing the intent model was trained
// with: anything the training pipeline stripped has to be stripped
// here too or confidence degrades badly.
var (
	reBrackets    = regexp.MustCompile(`\[[^\]]*\]`)
	reLinks       = regexp.MustCompile(`https?://\S+|www\.\S+`)
	reHTMLTags    = regexp.MustCompile(`<[^>]*>`)
	rePunctuation = regexp.MustCompile(`[[:punct:]]`)
	reNumberWords = regexp.MustCompile(`\w*\d\w*`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

// CleanText normalizes raw user text before inference: lowercase,
// strip bracketed segments, links, HTML tags, punctuation, words
// containing digits, and collapse whitespace.
func CleanText(text string) string {
	text = strings.ToLower(text)
	text = reBrackets.ReplaceAllString(text, "")
	text = reLinks.ReplaceAllString(text, "")
	text = reHTMLTags.ReplaceAllString(text, "")
	text = rePunctuation.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\n", "")
	text = reNumberWords.ReplaceAllString(text, "")
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
