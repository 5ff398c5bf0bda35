package extraction

import (
	"regexp"
	"strings"
)

// reReschedule catches explicit reschedule language before any
// accept/reject analysis: a reschedule ask is neither.
var reReschedule = regexp.MustCompile(`\b(reschedule|need to reschedule|please reschedule|can we reschedule)\b`)

// reEmbeddedThread guards the negative patterns against firing on
// quoted template text rather than the sender's own words.
var reEmbeddedThread = regexp.MustCompile(`On\s+.*wrote:|>.*REJECT|>.*ACCEPT|Please reply with`)

// reHeaderLine filters residual header-looking lines when picking the
// first meaningful line of a reply.
var reHeaderLine = regexp.MustCompile(`(?i)^(on|from|to|date|subject|wrote:|sent:|>)`)

var negativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(cannot|can't|can not)\s+(accept|confirm|agree)\b`),
	regexp.MustCompile(`(?i)\b(don't|do not|won't|will not)\s+(accept|confirm|agree)\b`),
	regexp.MustCompile(`(?i)\b(unable to|not able to)\s+(accept|confirm|agree)\b`),
	regexp.MustCompile(`(?i)\b(reject|decline|cancel)\b`),
	regexp.MustCompile(`(?i)\bnot\s+(available|possible|working)\b`),
	regexp.MustCompile(`(?i)\b(sorry|unfortunately)\b.*\b(cannot|can't|not|no)\b`),
	regexp.MustCompile(`(?i)\b(won't|will not)\s+(work|be available)\b`),
	regexp.MustCompile(`(?i)\b(doesn't|does not)\s+(work|suit)\b`),
	regexp.MustCompile(`(?i)\b(can't|cannot)\s+(make it|attend|be there)\b`),
	regexp.MustCompile(`(?i)\bnot\s+(free|available)\b`),
	regexp.MustCompile(`(?i)\b(busy|occupied|unavailable)\b`),
}

var strongAcceptPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^accept\b`),
	regexp.MustCompile(`(?i)^yes\b`),
	regexp.MustCompile(`(?i)^ok\b`),
	regexp.MustCompile(`(?i)^okay\b`),
	regexp.MustCompile(`(?i)^confirm\b`),
	regexp.MustCompile(`(?i)^confirmed\b`),
	regexp.MustCompile(`(?i)^agree\b`),
	regexp.MustCompile(`(?i)^agreed\b`),
	regexp.MustCompile(`(?i)^approve\b`),
	regexp.MustCompile(`(?i)^approved\b`),
	regexp.MustCompile(`(?i)^sounds good\b`),
	regexp.MustCompile(`(?i)^looks good\b`),
	regexp.MustCompile(`(?i)^perfect\b`),
}

var strongRejectPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^reject\b`),
	regexp.MustCompile(`(?i)^rejected\b`),
	regexp.MustCompile(`(?i)^no\b`),
	regexp.MustCompile(`(?i)^decline\b`),
	regexp.MustCompile(`(?i)^declined\b`),
	regexp.MustCompile(`(?i)^cancel\b`),
	regexp.MustCompile(`(?i)^cancelled\b`),
	regexp.MustCompile(`(?i)^deny\b`),
	regexp.MustCompile(`(?i)^denied\b`),
	regexp.MustCompile(`(?i)^not available\b`),
	regexp.MustCompile(`(?i)^can't\b`),
	regexp.MustCompile(`(?i)^cannot\b`),
	regexp.MustCompile(`(?i)^won't work\b`),
	regexp.MustCompile(`(?i)^doesn't work\b`),
	regexp.MustCompile(`(?i)^sorry\b`),
	regexp.MustCompile(`(?i)^unfortunately\b`),
}

var (
	reLooseAccept = regexp.MustCompile(`(?i)\b(accept|yes|ok|okay|confirm|agree|approve|perfect|good|great|fine|works|sounds good|looks good)\b`)
	reLooseReject = regexp.MustCompile(`(?i)\b(reject|no|decline|cancel|deny)\b`)
)

// Classify maps free-form reply text to an accept/reject/unknown
// intent with a confidence score. Precedence, highest first:
// reschedule language, negative sentiment, exact keyword, keyword
// prefix, loose keyword substring.
func Classify(text string) Classification {
	cleaned := CleanEmailBody(text)
	primary := strings.ToLower(strings.TrimSpace(firstMeaningfulLine(cleaned)))

	if reReschedule.MatchString(primary) {
		return Classification{Type: ResponseUnknown, Confidence: 0.3}
	}

	inThread := reEmbeddedThread.MatchString(cleaned)
	for _, p := range negativePatterns {
		if p.MatchString(primary) && !inThread {
			return Classification{Type: ResponseReject, Confidence: 0.9}
		}
	}

	switch primary {
	case "accept", "accepted", "yes":
		return Classification{Type: ResponseAccept, Confidence: 1.0}
	case "reject", "rejected", "no":
		return Classification{Type: ResponseReject, Confidence: 1.0}
	}

	for _, p := range strongAcceptPrefixes {
		if p.MatchString(primary) {
			return Classification{Type: ResponseAccept, Confidence: 0.95}
		}
	}
	for _, p := range strongRejectPrefixes {
		if p.MatchString(primary) {
			return Classification{Type: ResponseReject, Confidence: 0.95}
		}
	}

	if reLooseAccept.MatchString(cleaned) {
		return Classification{Type: ResponseAccept, Confidence: 0.8}
	}
	if reLooseReject.MatchString(cleaned) {
		return Classification{Type: ResponseReject, Confidence: 0.8}
	}

	return Classification{Type: ResponseUnknown, Confidence: 0.0}
}

// firstMeaningfulLine returns the first non-header, non-empty line,
// or the whole text when every line looks like a header.
func firstMeaningfulLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || reHeaderLine.MatchString(trimmed) {
			continue
		}
		return trimmed
	}
	return text
}
