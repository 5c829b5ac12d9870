package validate

import (
	"strings"
	"unicode"
)

// SkipWords is the fixed vocabulary recognized as a request to bypass a
// skippable field.
var SkipWords = []string{"skip", "none", "n/a", "na"}

// baseVagueWords are utterances that never carry field data.
var baseVagueWords = []string{
	"i dont know", "i don't know", "idk", "not sure", "maybe", "tbd", "unknown",
}

// extraVagueWords extends the base list for fields where throwaway tokens are
// common first answers.
var extraVagueWords = []string{"test", "hello", "ok", "same", "hi", "hey"}

// descriptionGibberish are keyboard-mash tokens rejected as descriptions.
var descriptionGibberish = []string{
	"test", "testing", "asdf", "asdfgh", "qwerty", "qwertyuiop", "123456",
	"abc", "abcdef", "aaa", "xyz", "foo", "foobar", "lorem ipsum",
}

// genericDescriptionPhrases are canned requests that say nothing unless the
// user wrote enough around them.
var genericDescriptionPhrases = []string{
	"i need this feature",
	"i want this feature",
	"please add this feature",
	"please fix this",
	"it doesn't work",
	"it does not work",
	"make it better",
}

// fillerPrefixes are lead-ins stripped from name answers before validation.
var fillerPrefixes = []string{
	"i think it is", "i think its", "i think it's", "i think",
	"the owner is", "owner is", "the creator is", "created by",
	"my name is", "name is", "i am", "i'm", "im",
	"it is", "it's", "its", "probably", "i guess", "maybe",
}

func isSkipWord(s string) bool {
	return containsFold(SkipWords, strings.TrimSpace(s))
}

func isVague(s string, extras ...string) bool {
	norm := strings.ToLower(strings.TrimSpace(s))
	if containsFold(baseVagueWords, norm) {
		return true
	}
	return containsFold(extras, norm)
}

func containsFold(words []string, s string) bool {
	for _, w := range words {
		if strings.EqualFold(w, s) {
			return true
		}
	}
	return false
}

// stripFillerPrefixes removes leading hedge phrases like "i think" or
// "the owner is" so the remaining text can be validated as a name.
func stripFillerPrefixes(s string) string {
	out := strings.TrimSpace(s)
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(out)
		for _, prefix := range fillerPrefixes {
			if strings.HasPrefix(lower, prefix+" ") {
				out = strings.TrimSpace(out[len(prefix):])
				changed = true
				break
			}
		}
	}
	return out
}

// isPunctOrDigitsOnly reports whether s contains no letters at all.
func isPunctOrDigitsOnly(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return len(strings.TrimSpace(s)) > 0
}

// isRepeatedRune reports whether s is one rune repeated at least n times.
func isRepeatedRune(s string, n int) bool {
	runes := []rune(s)
	if len(runes) < n {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}

// hasRunOfRune reports whether any rune repeats at least n times in a row.
func hasRunOfRune(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

// isEmojiOnly reports whether s (ignoring spaces) consists entirely of emoji
// or pictographic symbols.
func isEmojiOnly(s string) bool {
	seen := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if !isEmojiRune(r) {
			return false
		}
		seen = true
	}
	return seen
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // pictographs, emoticons, symbols
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r == 0xFE0F || r == 0x200D: // variation selector, ZWJ
		return true
	}
	return false
}

// titleCaseWords uppercases the first letter of each word.
func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
