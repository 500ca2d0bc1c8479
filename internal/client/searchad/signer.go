package searchad

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
)

// Signature computes base64(HMAC-SHA256(secret, "{ts}.{METHOD}.{path}")).
// path must not carry the query string.
func Signature(secret, timestamp, method, path string) string {
	msg := timestamp + "." + strings.ToUpper(strings.TrimSpace(method)) + "." + path
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(msg))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func requestPath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	return p, nil
}
