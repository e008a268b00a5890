package session

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// TokenError reports a malformed callback token or deep-link payload.
type TokenError struct {
	Token  string
	Reason string
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad token %q: %s: %v", e.Token, e.Reason, e.Err)
	}
	return fmt.Sprintf("bad token %q: %s", e.Token, e.Reason)
}

func (e *TokenError) Unwrap() error { return e.Err }

func tokenErr(token, reason string, err error) error {
	return &TokenError{Token: token, Reason: reason, Err: err}
}

// ViewLinkPrefix starts the deep link that opens one record.
const ViewLinkPrefix = "/view_"

// Codec packs (recordID, page, messageID) into a short URL-safe token that
// fits a deep link such as /view_<token>.
type Codec struct{}

// ViewLink is the deep link that opens recordID from any chat message.
func (c Codec) ViewLink(recordID int64) string {
	return ViewLinkPrefix + c.Encode(recordID, 0, 0)
}

var tokenEncoding = base64.RawURLEncoding

func (Codec) Encode(recordID int64, page, messageID int) string {
	raw := strconv.FormatInt(recordID, 10) + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(messageID)
	return tokenEncoding.EncodeToString([]byte(raw))
}

// Decode is the inverse of Encode. It never returns a partial result.
func (Codec) Decode(token string) (recordID int64, page, messageID int, err error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return 0, 0, 0, tokenErr(token, "not base64url", err)
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 3 {
		return 0, 0, 0, tokenErr(token, fmt.Sprintf("want 3 fields, got %d", len(parts)), nil)
	}
	id, err := parseNonNegative(parts[0], 63)
	if err != nil {
		return 0, 0, 0, tokenErr(token, "record id", err)
	}
	p, err := parseNonNegative(parts[1], 31)
	if err != nil {
		return 0, 0, 0, tokenErr(token, "page", err)
	}
	msg, err := parseNonNegative(parts[2], 31)
	if err != nil {
		return 0, 0, 0, tokenErr(token, "message id", err)
	}
	return id, int(p), int(msg), nil
}

// parseNonNegative accepts plain decimal digits only; signs are rejected.
func parseNonNegative(s string, bits int) (int64, error) {
	if s == "" || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, fmt.Errorf("%q is not a non-negative integer", s)
	}
	n, err := strconv.ParseInt(s, 10, bits+1)
	if err != nil {
		return 0, err
	}
	return n, nil
}
