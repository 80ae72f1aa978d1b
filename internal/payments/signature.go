package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// canonicalString joins the values of the named fields, in the given order,
// with '|'. Both sides of the gateway integration must agree on the field
// order or signatures will never match.
func canonicalString(fields map[string]string, order []string) string {
	values := make([]string, 0, len(order))
	for _, name := range order {
		values = append(values, fields[name])
	}
	return strings.Join(values, "|")
}

// Sign computes the hex-encoded HMAC-SHA256 over the canonical string of the
// named fields.
func Sign(secret string, fields map[string]string, order []string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonicalString(fields, order)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a presented signature in constant time.
func Verify(secret string, fields map[string]string, order []string, signature string) bool {
	expected := Sign(secret, fields, order)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
