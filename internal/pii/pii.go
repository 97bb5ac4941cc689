// Package pii detects and masks personally identifiable information in
// document text. Detection is regex-only: deterministic, auditable, and
// deliberately permissive. Known false positives (version-like digit runs
// matching the phone pattern, dotted version strings matching the IPv4
// pattern) are accepted rather than patched with context heuristics.
package pii

import "regexp"

// Sentinel tokens substituted for detected PII. They contain no digits and
// no "@", so masking already-masked text is a no-op.
const (
	EmailSentinel = "|||EMAIL_ADDRESS|||"
	PhoneSentinel = "|||PHONE_NUMBER|||"
	IPSentinel    = "|||IP_ADDRESS|||"
)

var (
	// Permissive local part, domain with at least one dot and an
	// alphabetic top-level segment of 2+ chars.
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// US phone shapes: 2831823829, (283) 182-3829, 283-182-3829,
	// 283.182.3829, 283 182 3829. An optional +1/1 prefix is tolerated.
	phonePattern = regexp.MustCompile(`(?:\+?1[-.\s])?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	// IPv4: four octets, each 0-255. Values above 255 must not match.
	ipPattern = regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\.){3}(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\b`)
)

// Counts holds per-kind replacement counts from a MaskAll pass.
type Counts struct {
	Emails int `json:"email"`
	Phones int `json:"phone"`
	IPs    int `json:"ip"`
}

// Total returns the sum across kinds.
func (c Counts) Total() int { return c.Emails + c.Phones + c.IPs }

func maskWith(re *regexp.Regexp, text, sentinel string) (string, int) {
	n := len(re.FindAllStringIndex(text, -1))
	if n == 0 {
		return text, 0
	}
	return re.ReplaceAllLiteralString(text, sentinel), n
}

// MaskEmails replaces email addresses with EmailSentinel and returns the
// masked text and the replacement count.
func MaskEmails(text string) (string, int) {
	return maskWith(emailPattern, text, EmailSentinel)
}

// MaskPhoneNumbers replaces US-format phone numbers with PhoneSentinel.
func MaskPhoneNumbers(text string) (string, int) {
	return maskWith(phonePattern, text, PhoneSentinel)
}

// MaskIPs replaces IPv4 addresses with IPSentinel.
func MaskIPs(text string) (string, int) {
	return maskWith(ipPattern, text, IPSentinel)
}

// MaskAll applies all three detectors in a fixed order: email, then phone,
// then IP. Email runs first so "@"-delimited tokens are consumed before the
// phone pattern can see their digit runs.
func MaskAll(text string) (string, Counts) {
	var counts Counts
	text, counts.Emails = MaskEmails(text)
	text, counts.Phones = MaskPhoneNumbers(text)
	text, counts.IPs = MaskIPs(text)
	return text, counts
}
