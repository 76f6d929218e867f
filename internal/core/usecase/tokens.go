package usecase

import "unicode"

// approxTokens estimates the token count of text as the number of
// alphanumeric runs plus one token per four residual characters. The
// estimate only needs to be stable and monotone for budget enforcement.
func approxTokens(text string) int {
	words := 0
	residual := 0
	inWord := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if !inWord {
				words++
				inWord = true
			}
		} else {
			inWord = false
			if !unicode.IsSpace(r) {
				residual++
			}
		}
	}
	return words + residual/4
}
