package interview

import "strings"

// readySignals match anywhere in the utterance, whatever its length.
var readySignals = []string{
	"ready", "let's start", "let's go", "let's begin", "lets begin", "lets start",
	"bring it on", "i'm ready", "i am ready", "go ahead", "start", "begin",
}

// shortAffirmatives match only as the whole utterance of at most three words.
var shortAffirmatives = map[string]bool{
	"yes": true, "sure": true, "ok": true, "okay": true, "yeah": true, "yep": true, "yup": true,
}

const maxAffirmativeWords = 3

// IsReady reports whether the candidate's greeting reply means "let's go".
// A long reply that merely contains "yes" is not enough.
func IsReady(utterance string) bool {
	s := strings.ToLower(strings.TrimSpace(utterance))
	if s == "" {
		return false
	}
	for _, signal := range readySignals {
		if strings.Contains(s, signal) {
			return true
		}
	}
	if len(strings.Fields(s)) > maxAffirmativeWords {
		return false
	}
	return shortAffirmatives[s] || shortAffirmatives[strings.TrimRight(s, ".!,")]
}
