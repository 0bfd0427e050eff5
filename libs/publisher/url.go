package publisher

import "strings"

const upperhex = "0123456789ABCDEF"

// Escape percent-encodes every byte of s except the RFC 3986 unreserved
// characters, so "/" inside an object name is encoded as %2F.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

// PublicURL builds the token-bearing download URL of an object.
//
//	<base><bucket>/o/<escaped key>?alt=media&token=<token>
func PublicURL(base, bucket, key, token string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + bucket + "/o/" + Escape(key) + "?alt=media&token=" + token
}
