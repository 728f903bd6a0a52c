// Package invite finds WhatsApp group invite links in raw page text.
//
// Matching is textual, not DOM-aware. Invite links embedded in scripts,
// comments or malformed markup are found the same way as links in anchors.
package invite

import (
	"regexp"
	"strings"
)

// BaseURL is the canonical prefix every reconstructed invite link carries.
const BaseURL = "https://chat.whatsapp.com/"

// linkPattern matches the scheme and host case-insensitively. The captured
// code is case-sensitive and is returned exactly as it appears.
var linkPattern = regexp.MustCompile(`(?i:https?://chat\.whatsapp\.com/)([A-Za-z0-9_-]+)`)

// codePattern validates a bare invite code.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ExtractCodes returns the distinct invite codes found in text, in the order
// they first appear. It returns nil when nothing matches.
func ExtractCodes(text string) []string {
	matches := linkPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		code := m[1]
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// ExtractLinks returns the distinct reconstructed invite links found in text.
func ExtractLinks(text string) []string {
	codes := ExtractCodes(text)
	if codes == nil {
		return nil
	}
	links := make([]string, len(codes))
	for i, code := range codes {
		links[i] = Link(code)
	}
	return links
}

// Link reconstructs the canonical invite URL for code.
func Link(code string) string {
	return BaseURL + code
}

// IsLink reports whether s is a canonical invite link as produced by Link.
func IsLink(s string) bool {
	code, ok := strings.CutPrefix(s, BaseURL)
	return ok && codePattern.MatchString(code)
}
