// Package services – QR payload decoding.
//
// Scanning a label yields a raw payload whose shape depends on how the code
// was encoded at print time. DecodeQRPayload reduces the known encodings to
// the bare code value with a pure string transform; actual image decoding
// happens on the client and is out of scope here.
package services

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

// codeTokenRE bounds what a bare code value may look like after
// normalization: alphanumeric with internal dashes or underscores.
var codeTokenRE = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-_]*$`)

// DecodeQRPayload extracts a code value from a scanned QR payload.
// Supported encodings, tried in order:
//
//  1. verification URL with a "code" query parameter
//     (https://example.com/verify?code=LUM-AAA1)
//  2. verification URL with the code as the final path segment
//     (https://example.com/verify/LUM-AAA1)
//  3. JSON object with a "code" field ({"code":"LUM-AAA1"})
//  4. "CODE:" prefixed token (CODE:LUM-AAA1)
//  5. the bare code itself
//
// The result is normalized (trimmed, upper-cased). ErrInvalidQRPayload is
// returned when no encoding yields a plausible code token.
func DecodeQRPayload(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ErrInvalidQRPayload
	}

	// URL forms.
	if strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://") {
		u, err := url.Parse(payload)
		if err != nil {
			return "", ErrInvalidQRPayload
		}
		if c := NormalizeCode(u.Query().Get("code")); codeTokenRE.MatchString(c) {
			return c, nil
		}
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(segs) > 0 {
			if c := NormalizeCode(segs[len(segs)-1]); codeTokenRE.MatchString(c) {
				return c, nil
			}
		}
		return "", ErrInvalidQRPayload
	}

	// JSON form.
	if strings.HasPrefix(payload, "{") {
		var body struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			return "", ErrInvalidQRPayload
		}
		if c := NormalizeCode(body.Code); codeTokenRE.MatchString(c) {
			return c, nil
		}
		return "", ErrInvalidQRPayload
	}

	// Prefixed form.
	if rest, found := strings.CutPrefix(strings.ToUpper(payload), "CODE:"); found {
		if c := NormalizeCode(rest); codeTokenRE.MatchString(c) {
			return c, nil
		}
		return "", ErrInvalidQRPayload
	}

	// Bare token.
	if c := NormalizeCode(payload); codeTokenRE.MatchString(c) {
		return c, nil
	}
	return "", ErrInvalidQRPayload
}
