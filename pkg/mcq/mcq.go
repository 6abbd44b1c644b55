// Package mcq recognizes multiple-choice prompts and reduces model replies to an option letter.
package mcq

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/skury/pkg/domain"
)

var (
	optionPattern = regexp.MustCompile(`(?i)(^|\s)[(\[]?[A-H][)\].: -]`)

	wordLetter    = regexp.MustCompile(`(?i)\b([A-H])\b`)
	spacedLetter  = regexp.MustCompile(`(?i)(?:^|\s)([A-H])(?:\s|\.|,|$)`)
	prefixedLabel = regexp.MustCompile(`(?i)^(?:Option\s*)?([A-H])\b`)
)

// IsLikelyMCQ reports whether text carries at least two option markers such as "A)" or "(b)".
func IsLikelyMCQ(text string) bool {
	if text == "" {
		return false
	}
	return len(optionPattern.FindAllStringIndex(text, 2)) >= 2
}

// ExtractLetter finds a standalone option letter in a model reply.
func ExtractLetter(reply string) (string, bool) {
	return firstLetter(reply, wordLetter, spacedLetter)
}

// ExtractOptionLetter is the variant used when the model was asked for a letter directly,
// also accepting replies such as "Option C".
func ExtractOptionLetter(reply string) (string, bool) {
	return firstLetter(reply, wordLetter, prefixedLabel)
}

func firstLetter(s string, patterns ...*regexp.Regexp) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, re := range patterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return strings.ToUpper(m[1]), true
		}
	}
	return "", false
}

// Reduce collapses reply to a single letter when prompt looks like a multiple-choice question
// and a letter can be found. Otherwise the reply is returned unchanged.
func Reduce(prompt, reply string) string {
	if !IsLikelyMCQ(prompt) {
		return reply
	}
	if letter, ok := ExtractLetter(reply); ok {
		return letter
	}
	return reply
}

// LetterIndex returns the zero-based option index of letter, or -1.
func LetterIndex(letter string) int {
	if len(letter) != 1 {
		return -1
	}
	return strings.Index(domain.OptionLetters, strings.ToUpper(letter))
}

// BuildPrompt renders a question and its options as a letter-only prompt.
// Options beyond the eighth have no letter and are left out.
func BuildPrompt(question string, options []domain.Option) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\nOptions:\n", question)
	for i, opt := range options {
		if i >= len(domain.OptionLetters) {
			break
		}
		img := ""
		if opt.ImageText != "" {
			img = fmt.Sprintf(" [Image: %s]", opt.ImageText)
		}
		fmt.Fprintf(&b, "%c) %s%s\n", domain.OptionLetters[i], opt.Text, img)
	}
	b.WriteString("\nReturn ONLY the single best option letter (A-H).")
	return b.String()
}

// BuildFormPrompt renders a visible form question with its option labels.
// Labels beyond the eighth are left out.
func BuildFormPrompt(question string, labels []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\nOptions:", question)
	for i, label := range labels {
		if i >= len(domain.OptionLetters) {
			break
		}
		fmt.Fprintf(&b, "\n%c) %s", domain.OptionLetters[i], label)
	}
	b.WriteString("\nReturn ONLY the single best option letter.")
	return b.String()
}

// Confidence is the advisory confidence reported with a suggested answer.
func Confidence(index int) float64 {
	if index >= 0 {
		return 0.85
	}
	return 0.5
}
