package normalize

import "strings"

// Phone canonicalizes a Vietnamese phone number to local format: digits
// only, the 84 country code rewritten to a leading 0, and bare 9-digit
// subscriber numbers given their missing leading 0. Anything shorter than
// 10 digits after normalization is unusable and reported as invalid.
// No carrier-prefix validation is performed.
func Phone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	p := b.String()

	if strings.HasPrefix(p, "84") {
		p = "0" + p[2:]
	}
	if !strings.HasPrefix(p, "0") && len(p) == 9 {
		p = "0" + p
	}

	if len(p) < 10 {
		return "", false
	}
	return p, true
}
