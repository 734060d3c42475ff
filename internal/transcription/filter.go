package transcription

import (
	"regexp"
	"strings"
)

// MinConfidence is the floor below which word hypotheses are rejected.
// The comparison is strict: a probability of exactly MinConfidence passes.
const MinConfidence = 0.4

// Speech models emit non-speech captions when the vocal stem still carries
// bleed from music or crowd noise. These shapes cover the ones observed in
// practice: parenthesized cue words, bracketed captions, and runs of
// musical-note glyphs.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*\([^)]*music[^)]*\)\s*$`),
	regexp.MustCompile(`(?i)^\s*\([^)]*singing[^)]*\)\s*$`),
	regexp.MustCompile(`(?i)^\s*\([^)]*instrumental[^)]*\)\s*$`),
	regexp.MustCompile(`(?i)^\s*\([^)]*applause[^)]*\)\s*$`),
	regexp.MustCompile(`(?i)^\s*\[[^\]]*music[^\]]*\]\s*$`),
	regexp.MustCompile(`(?i)^\s*\[[^\]]*\]\s*$`),
	regexp.MustCompile(`(?i)^\s*\([^)]*\)\s*$`),
	regexp.MustCompile(`^\s*[♪♫]+\s*$`),
}

var (
	leadingBracketRe  = regexp.MustCompile(`^[\s\[\(].*?[\]\)]\s*`)
	trailingBracketRe = regexp.MustCompile(`\s*[\[\(].*?[\]\)]\s*$`)
	noteGlyphRe       = regexp.MustCompile(`[♪♫]`)
)

// IsNoise reports whether a text fragment is a non-speech artifact.
func IsNoise(text string) bool {
	for _, pattern := range noisePatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// Clean strips a single leading bracketed or parenthesized prefix, a single
// trailing one, removes musical-note glyphs anywhere, and trims whitespace.
// Returns the empty string when nothing remains. Clean is idempotent.
func Clean(word string) string {
	cleaned := leadingBracketRe.ReplaceAllString(word, "")
	cleaned = trailingBracketRe.ReplaceAllString(cleaned, "")
	cleaned = noteGlyphRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
