package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anupamar/intake/nlp"
	"github.com/anupamar/intake/registry"
	"github.com/anupamar/intake/types"
)

var (
	camelCompoundRe = regexp.MustCompile(`^[A-Za-z]*[a-z][A-Z][A-Za-z]*$`)
	partialNameRe   = regexp.MustCompile(`^[A-Za-z]{1,3}\d+$`)
	urlHostRe       = regexp.MustCompile(`^https?://([^/]+)`)
)

// webmailDomains are personal mail hosts rejected as reference links.
var webmailDomains = []string{"gmail.", "mail.google.", "outlook.", "yahoo.", "hotmail."}

func validateTitle(raw string, _ time.Time) (Result, error) {
	def := registry.MustLookup(registry.KeyTitle)
	if err := requiredGuard(def, raw, extraVagueWords...); err != nil {
		return Result{}, err
	}
	n := utf8.RuneCountInString(raw)
	if n < 3 {
		return Result{}, fmt.Errorf("That title is too short — give me at least 3 characters.")
	}
	if n > 100 {
		return Result{}, fmt.Errorf("That title is too long (%d characters). Keep it under 100.", n)
	}
	if isEmojiOnly(raw) {
		return Result{}, fmt.Errorf("A title can't be only emoji. Describe the request in words.")
	}
	if isRepeatedRune(raw, 10) {
		return Result{}, fmt.Errorf("That doesn't look like a real title. Try something specific.")
	}
	return Result{Value: raw}, nil
}

func validateType(raw string, _ time.Time) (Result, error) {
	def := registry.MustLookup(registry.KeyType)
	if err := requiredGuard(def, raw, extraVagueWords...); err != nil {
		return Result{}, fmt.Errorf("Request Type must be one of: %s.", strings.Join(def.Options, ", "))
	}
	if match, ok := nlp.MatchOption(raw, def.Options); ok {
		return Result{Value: match}, nil
	}
	return Result{}, fmt.Errorf("I couldn't match %q to a request type. Choose one of: %s.", raw, strings.Join(def.Options, ", "))
}

func validateClient(raw string, _ time.Time) (Result, error) {
	if isSkipWord(raw) || isVague(raw) {
		return Result{Value: types.SentinelTBD, Skipped: true}, nil
	}
	if utf8.RuneCountInString(raw) < 2 {
		return Result{}, fmt.Errorf("Client names need at least 2 characters.")
	}
	if isPunctOrDigitsOnly(raw) {
		return Result{}, fmt.Errorf("That doesn't look like a client name. Use words, or say 'skip'.")
	}
	return Result{Value: raw}, nil
}

func validateModule(raw string, _ time.Time) (Result, error) {
	if isSkipWord(raw) || isVague(raw) {
		return Result{Value: types.SentinelTBD, Skipped: true}, nil
	}
	if isVague(raw, extraVagueWords...) {
		return Result{}, fmt.Errorf("That doesn't tell me which module. Name a product area, or say 'skip'.")
	}
	if utf8.RuneCountInString(raw) < 2 {
		return Result{}, fmt.Errorf("Module names need at least 2 characters.")
	}
	if isPunctOrDigitsOnly(raw) {
		return Result{}, fmt.Errorf("That doesn't look like a module name. Use words, or say 'skip'.")
	}
	if !strings.Contains(raw, " ") && camelCompoundRe.MatchString(raw) {
		return Result{}, fmt.Errorf("%q looks like a code identifier, not a module name. Use the product name, e.g. 'User Auth'.", raw)
	}
	return Result{Value: raw}, nil
}

func validateDescription(raw string, _ time.Time) (Result, error) {
	def := registry.MustLookup(registry.KeyDescription)
	if err := requiredGuard(def, raw, extraVagueWords...); err != nil {
		return Result{}, err
	}
	lower := strings.ToLower(raw)
	if containsFold(descriptionGibberish, lower) {
		return Result{}, fmt.Errorf("That reads like placeholder text. Describe what should happen and why.")
	}
	if utf8.RuneCountInString(raw) < 15 {
		return Result{}, fmt.Errorf("That's too brief. Give me at least 15 characters of real detail.")
	}
	if hasRunOfRune(raw, 6) {
		return Result{}, fmt.Errorf("That doesn't look like a real description. Try again with actual detail.")
	}
	if looksLikeTokenMash(raw) {
		return Result{}, fmt.Errorf("That doesn't look like a real description. Try again with actual detail.")
	}
	for _, phrase := range genericDescriptionPhrases {
		if strings.Contains(lower, phrase) && utf8.RuneCountInString(raw) < 40 {
			return Result{}, fmt.Errorf("That's a bit generic. What exactly should it do, and for whom?")
		}
	}
	return Result{Value: raw}, nil
}

// looksLikeTokenMash catches short runs of tiny all-letter tokens such as
// "asd fgh jkl" that pass the length gate without saying anything.
func looksLikeTokenMash(s string) bool {
	tokens := strings.Fields(s)
	if len(tokens) < 2 || utf8.RuneCountInString(s) >= 20 {
		return false
	}
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) > 3 || isPunctOrDigitsOnly(tok) {
			return false
		}
	}
	return true
}

// validatePersonName covers both owner and created_by.
func validatePersonName(raw string, _ time.Time) (Result, error) {
	if isSkipWord(raw) || isVague(raw, extraVagueWords...) {
		return Result{}, fmt.Errorf("I need an actual person's name here — it can't be skipped.")
	}
	name := stripFillerPrefixes(raw)
	if utf8.RuneCountInString(name) < 2 {
		return Result{}, fmt.Errorf("Names need at least 2 characters.")
	}
	if isPunctOrDigitsOnly(name) {
		return Result{}, fmt.Errorf("That doesn't look like a name. Who is it?")
	}
	if partialNameRe.MatchString(name) {
		return Result{}, fmt.Errorf("%q looks like a partial handle, not a name. Give me the full name.", name)
	}
	return Result{Value: titleCaseWords(name)}, nil
}

// priorityVocab maps every accepted priority utterance to its canonical value.
var priorityVocab = map[string]string{
	"0": "0 - Critical", "critical": "0 - Critical", "urgent": "0 - Critical",
	"1": "1 - High", "high": "1 - High", "important": "1 - High",
	"2": "2 - Medium", "medium": "2 - Medium", "normal": "2 - Medium", "standard": "2 - Medium",
	"3": "3 - Low", "low": "3 - Low", "optional": "3 - Low", "nice to have": "3 - Low",
}

// priorityWords is the typo-tolerance vocabulary: the alphabetic utterances
// only, in a fixed order. The digit keys stay out so stray characters like
// "4" or "x" can never land on one by edit distance.
var priorityWords = []string{
	"critical", "urgent", "high", "important", "medium", "normal",
	"standard", "low", "optional", "nice to have",
}

func validatePriority(raw string, _ time.Time) (Result, error) {
	def := registry.MustLookup(registry.KeyPriority)
	if err := requiredGuard(def, raw, extraVagueWords...); err != nil {
		return Result{}, err
	}
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := priorityVocab[key]; ok {
		return Result{Value: canonical}, nil
	}
	for _, canonical := range registry.PriorityOptions {
		if strings.EqualFold(key, canonical) {
			return Result{Value: canonical}, nil
		}
	}
	// Typo tolerance over the word vocabulary before giving up. Numeric
	// input matches exactly 0-3 above or not at all.
	if !isPunctOrDigitsOnly(key) {
		if match, ok := nlp.MatchOption(key, priorityWords); ok {
			return Result{Value: priorityVocab[strings.ToLower(match)]}, nil
		}
	}
	return Result{}, fmt.Errorf("Priority must be Critical, High, Medium or Low (or 0-3). Stored values look like %q.", registry.PriorityOptions[1])
}

func validateDueDate(raw string, now time.Time) (Result, error) {
	def := registry.MustLookup(registry.KeyDueDate)
	if err := requiredGuard(def, raw, extraVagueWords...); err != nil {
		return Result{}, err
	}
	if strings.EqualFold(strings.TrimSpace(raw), "yesterday") {
		return Result{}, fmt.Errorf("A due date can't be in the past. When is it actually needed?")
	}
	parsed, ok := nlp.ParseDatePhrase(raw, now)
	if !ok {
		return Result{}, fmt.Errorf("I couldn't read %q as a date. Try 'next friday', 'in 5 days', or YYYY-MM-DD.", raw)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if parsed.Before(today) {
		return Result{}, fmt.Errorf("%s is in the past. Pick today or later.", parsed.Format("2006-01-02"))
	}
	return Result{Value: parsed.Format("2006-01-02")}, nil
}

// linkClearWords empty the reference link in addition to the skip vocabulary.
var linkClearWords = []string{"remove", "delete", "clear"}

func validateReferenceLink(raw string, _ time.Time) (Result, error) {
	if isSkipWord(raw) || containsFold(linkClearWords, strings.TrimSpace(raw)) {
		return Result{Value: "", Skipped: true}, nil
	}
	link := strings.TrimSpace(raw)
	if strings.Contains(strings.ToLower(link), "javascript:") {
		return Result{}, fmt.Errorf("That link isn't safe to store. Use a plain http(s) URL.")
	}
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return Result{}, fmt.Errorf("Links must start with http:// or https://.")
	}
	if strings.ContainsAny(link, " \t\n") {
		return Result{}, fmt.Errorf("Links can't contain spaces.")
	}
	if strings.Index(link, ".") <= 0 {
		return Result{}, fmt.Errorf("%q doesn't look like a real URL.", link)
	}
	if m := urlHostRe.FindStringSubmatch(strings.ToLower(link)); m != nil {
		for _, domain := range webmailDomains {
			if strings.Contains(m[1], domain) {
				return Result{}, fmt.Errorf("That looks like a private mailbox link others can't open. Share a doc or tracker link instead.")
			}
		}
	}
	return Result{Value: link}, nil
}
