package extraction

import "strings"

// Template fragments our own outbound emails carry; they must not
// leak into extraction when a recipient replies inline.
var templateChrome = []string{
	"Please reply with ACCEPT or REJECT",
	"- ACCEPT to confirm",
	"- REJECT to decline",
}

// Sign-off lines dropped wherever they appear.
var signOffs = map[string]bool{
	"Have a nice day!": true,
	"Best regards,":    true,
	"Thanks,":          true,
}

// CleanEmailBody extracts the likely human-authored portion of a
// reply. It stops at the first line that looks like the start of
// quoted thread content and drops sign-offs and template chrome.
// Cleaning already-clean text returns it unchanged aside from
// whitespace normalization.
func CleanEmailBody(raw string) string {
	lines := strings.Split(raw, "\n")
	clean := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if isThreadStart(trimmed) {
			break
		}
		if trimmed == "" || signOffs[trimmed] || isTemplateChrome(trimmed) {
			continue
		}

		clean = append(clean, trimmed)
	}

	return strings.TrimSpace(strings.Join(clean, " "))
}

// isThreadStart reports whether a line begins the quoted tail of an
// email thread.
func isThreadStart(line string) bool {
	switch {
	case strings.HasPrefix(line, "On ") && strings.Contains(line, "wrote:"):
		return true
	case strings.HasPrefix(line, "From:"),
		strings.HasPrefix(line, "To:"),
		strings.HasPrefix(line, "Subject:"),
		strings.HasPrefix(line, "Date:"),
		strings.HasPrefix(line, ">"):
		return true
	case strings.Contains(line, "Dear ") && strings.Contains(line, "provided the following"):
		return true
	case strings.Contains(line, "Interview Scheduler System"):
		return true
	}
	return false
}

func isTemplateChrome(line string) bool {
	for _, fragment := range templateChrome {
		if strings.Contains(line, fragment) {
			return true
		}
	}
	return false
}
