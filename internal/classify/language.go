// Package classify implements the cheap lexical classifiers that run ahead of
// any model call: language detection, the badword filter, social and
// small-talk matching, and the product / denial / support keyword sets.
package classify

// Language detects the message language by script ranges. Any CJK character
// wins, then Cyrillic; a pure-ASCII message is English; everything else
// (including Vietnamese diacritics) defaults to Vietnamese.
func Language(text string) string {
	ascii := true
	for _, r := range text {
		switch {
		case r >= 0x4e00 && r <= 0x9fff:
			return "zh"
		case r >= 0x0400 && r <= 0x04ff:
			return "ru"
		case r > 127:
			ascii = false
		}
	}
	if ascii {
		return "en"
	}
	return "vi"
}
