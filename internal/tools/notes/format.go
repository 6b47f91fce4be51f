// Package notes implements the guest notes tools. Notes live in the
// description field of a VM or container configuration; Proxmox
// renders them as HTML, Markdown or plain text in the web UI.
package notes

import (
	"regexp"
	"strings"
)

// Format names as reported in tool responses.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
)

// maxNoteBytes is the size above which a note gets a warning. The PVE
// description field itself accepts more, but the UI truncates.
const maxNoteBytes = 64 * 1024

var htmlTagPattern = regexp.MustCompile(`(?i)<[a-z][\s\S]*>`)

var markdownPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}\s`),          // headers
	regexp.MustCompile(`\*\*[^*]+\*\*`),          // bold
	regexp.MustCompile(`(?m)^\s*[-*+]\s`),        // unordered lists
	regexp.MustCompile(`(?m)^\s*\d+\.\s`),        // ordered lists
	regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`),    // links
	regexp.MustCompile("`[^`]+`"),                // inline code
}

// secretRefPattern matches secret store references like
// secret://vault/prod/db-password. References are the supported way to
// point at credentials from a note.
var secretRefPattern = regexp.MustCompile(`secret://([a-zA-Z0-9_\-/]+)`)

// plaintextSecretPatterns match credentials pasted directly into a
// note. Notes are world-readable to anyone with VM.Audit, so these are
// rejected.
var plaintextSecretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(password)\s*[:=]\s*\S+`),
	regexp.MustCompile(`(?i)\b(passwd)\s*[:=]\s*\S+`),
	regexp.MustCompile(`(?i)\b(pwd)\s*[:=]\s*\S+`),
	regexp.MustCompile(`(?i)\b(api[_-]?key)\s*[:=]\s*\S+`),
	regexp.MustCompile(`(?i)\b(token)\s*[:=]\s*\S+`),
	regexp.MustCompile(`(?i)\b(secret[_-]?key)\s*[:=]\s*\S+`),
}

// DetectFormat classifies note content as html, markdown or plain.
func DetectFormat(content string) string {
	if content == "" {
		return FormatPlain
	}
	if htmlTagPattern.MatchString(content) {
		return FormatHTML
	}
	for _, p := range markdownPatterns {
		if p.MatchString(content) {
			return FormatMarkdown
		}
	}
	return FormatPlain
}

// SecretReferences extracts secret:// reference names from a note, in
// order of appearance without duplicates.
func SecretReferences(content string) []string {
	var refs []string
	seen := make(map[string]struct{})
	for _, match := range secretRefPattern.FindAllStringSubmatch(content, -1) {
		if _, ok := seen[match[1]]; ok {
			continue
		}
		seen[match[1]] = struct{}{}
		refs = append(refs, match[1])
	}
	return refs
}

// Validate checks note content before it is stored. It returns
// non-blocking warnings and the keywords of plaintext secrets found;
// any secret makes the content invalid. Only the keyword is reported,
// never the value. secret:// references never count as secrets.
func Validate(content string) (warnings, secrets []string) {
	// Strip references first so "password: secret://x" is not flagged.
	stripped := secretRefPattern.ReplaceAllString(content, "")

	for _, p := range plaintextSecretPatterns {
		if match := p.FindStringSubmatch(stripped); match != nil {
			secrets = append(secrets, strings.ToLower(match[1]))
		}
	}

	if len(content) > maxNoteBytes {
		warnings = append(warnings, "content exceeds 64KB and may be truncated in the web UI")
	}

	return warnings, secrets
}
