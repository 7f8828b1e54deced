package utils

import "time"

// FuturesLetters are the exchange month codes, January first.
const FuturesLetters = "FGHJKMNQUVXZ"

// FuturesMonth maps a month letter (F=Jan ... Z=Dec) to its month.
func FuturesMonth(letter byte) (time.Month, bool) {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	for i := 0; i < len(FuturesLetters); i++ {
		if FuturesLetters[i] == letter {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// FuturesLetter is the month code of m.
func FuturesLetter(m time.Month) byte {
	return FuturesLetters[m-1]
}
