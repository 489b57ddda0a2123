package service

import "strings"

// IsQuestion decides whether a message needs an expert reply. The policy is
// deliberately crude: any content containing a question mark is tracked,
// nothing else is. Downstream escalation timers only apply to messages this
// returns true for, so the policy must not be "improved" in isolation.
func IsQuestion(content string) bool {
	return strings.Contains(content, "?")
}
