package gemini

import "strings"

// StyleInstruction is the first text part of every chat call.
var StyleInstruction = strings.Join([]string{
	"Answering rules:",
	"- Only provide relevant information. Avoid filler.",
	"- If the task is a multiple-choice question with options (A, B, C, D), reply with ONLY the single best option letter (A/B/C/D). No explanation.",
	"- Otherwise, keep the response concise (ideally under 3 sentences).",
}, "\n")

// SuggestMaxOutputTokens is the token budget of a suggest-answer call.
const SuggestMaxOutputTokens = 512
