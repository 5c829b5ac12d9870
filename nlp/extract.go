package nlp

import (
	"regexp"
	"strings"
	"time"
)

// Entities holds whatever could be pulled out of one free-text utterance.
// Extraction is best effort; empty fields mean nothing was found.
type Entities struct {
	Names    []string
	Date     string
	Priority string
	Modules  []string
	URLs     []string
	Emails   []string
}

var (
	personNameRe = regexp.MustCompile(`\b([A-Z][a-z]+(?: [A-Z][a-z]+)+)\b`)
	urlRe        = regexp.MustCompile(`https?://[^\s<>"']+`)
	emailRe      = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.]+\b`)
	datePhraseRe = regexp.MustCompile(`(?i)\b(today|tomorrow|next week|next month|in \d{1,3} days?|next (?:sunday|monday|tuesday|wednesday|thursday|friday|saturday)|\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})\b`)
	priorityRe   = regexp.MustCompile(`(?i)\b(critical|urgent|high priority|high|medium|normal|low priority|low|p[0-3])\b`)
)

// moduleKeywords are domain areas recognized inside free text.
var moduleKeywords = []string{
	"dashboard", "reports", "reporting", "billing", "invoicing", "auth",
	"login", "search", "notifications", "analytics", "integration", "api",
	"export", "import", "scheduling", "admin",
}

// Extract scans a free-text blob for field-shaped entities so that a single
// utterance can opportunistically fill several fields.
func Extract(text string) Entities {
	var e Entities

	for _, m := range personNameRe.FindAllString(text, -1) {
		e.Names = append(e.Names, m)
	}
	e.URLs = urlRe.FindAllString(text, -1)
	e.Emails = emailRe.FindAllString(text, -1)

	if m := datePhraseRe.FindString(text); m != "" {
		phrase := strings.ToLower(m)
		if _, ok := ParseDatePhrase(phrase, time.Now()); ok {
			e.Date = phrase
		}
	}

	if m := priorityRe.FindString(text); m != "" {
		e.Priority = normalizePriorityWord(m)
	}

	lower := strings.ToLower(text)
	for _, kw := range moduleKeywords {
		if containsWord(lower, kw) {
			e.Modules = append(e.Modules, kw)
		}
	}

	return e
}

func normalizePriorityWord(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	switch w {
	case "critical", "urgent", "p0":
		return "critical"
	case "high", "high priority", "p1":
		return "high"
	case "medium", "normal", "p2":
		return "medium"
	case "low", "low priority", "p3":
		return "low"
	}
	return w
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	for idx >= 0 {
		before := idx == 0 || !isLetter(text[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(text) || !isLetter(text[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
