package domain

// Preference keys owned by the coordinator's persistent storage.
const (
	// KeyAPICredential holds the generative-language API key.
	KeyAPICredential = "geminiApiKey"

	// KeyTheme holds the panel theme choice ("dark" or "light").
	KeyTheme = "skuryTheme"
)

// OptionLetters are the option markers understood by the MCQ heuristics, in order.
const OptionLetters = "ABCDEFGH"

// MaxOptions caps the number of options considered per question.
const MaxOptions = len(OptionLetters)
