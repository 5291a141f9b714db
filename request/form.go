package request

import (
	"fmt"
	"strings"
)

const upperHex = "0123456789ABCDEF"

// EncodeForm renders params as an application/x-www-form-urlencoded body.
//
// Keys and values are escaped with a query-value set: everything except ALPHA,
// DIGIT, "-", ".", "_", "~", "/" and "?" is percent-encoded, so the general and
// sub-delimiters :#[]@!$&'()*+,;= never appear literally.
func EncodeForm(params []Param) []byte {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EscapeValue(p.Key))
		b.WriteByte('=')
		b.WriteString(EscapeValue(p.Value))
	}
	return []byte(b.String())
}

// EscapeValue percent-encodes s for use as a form key or value.
func EscapeValue(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !valueAllowed(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	out := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if valueAllowed(c) {
			out = append(out, c)
			continue
		}
		out = append(out, '%', upperHex[c>>4], upperHex[c&0x0f])
	}
	return string(out)
}

func valueAllowed(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', '/', '?':
		return true
	}
	return false
}

// DecodeForm splits a body produced by [EncodeForm] on "&" and "=" and
// reverses the percent-encoding.
func DecodeForm(body []byte) ([]Param, error) {
	if len(body) == 0 {
		return nil, nil
	}
	pairs := strings.Split(string(body), "&")
	out := make([]Param, 0, len(pairs))
	for _, pair := range pairs {
		k, v, _ := strings.Cut(pair, "=")
		key, err := unescape(k)
		if err != nil {
			return nil, err
		}
		value, err := unescape(v)
		if err != nil {
			return nil, err
		}
		out = append(out, Param{Key: key, Value: value})
	}
	return out, nil
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			out = append(out, s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("invalid escape in %q", s)
		}
		hi, ok1 := fromHex(s[i+1])
		lo, ok2 := fromHex(s[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("invalid escape in %q", s)
		}
		out = append(out, hi<<4|lo)
		i += 2
	}
	return string(out), nil
}

func fromHex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
