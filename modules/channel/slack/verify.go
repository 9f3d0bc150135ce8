package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	signatureHeader = "X-Slack-Signature"
	timestampHeader = "X-Slack-Request-Timestamp"

	// signatureVersion is the only supported signing scheme version.
	signatureVersion = "v0"
)

// Authenticator verifies the v0 request signature on inbound webhooks.
//
// The signing secret is read through a function on every call so a
// rotated secret takes effect immediately. The base string is built from
// the raw request bytes, so Authenticate must run before any JSON
// parsing of the body.
type Authenticator struct {
	secret  func() string
	maxSkew time.Duration
	now     func() time.Time
}

// NewAuthenticator creates an authenticator reading the current signing
// secret via the given function.
func NewAuthenticator(secret func() string, maxSkew time.Duration) *Authenticator {
	return &Authenticator{
		secret:  secret,
		maxSkew: maxSkew,
		now:     time.Now,
	}
}

// Authenticate checks the signature and timestamp headers against the raw
// body bytes. A nil return means the request is genuine and fresh; any
// failure returns an *AuthenticationError.
func (a *Authenticator) Authenticate(rawBody []byte, headers http.Header) error {
	signature := headers.Get(signatureHeader)
	if signature == "" {
		return &AuthenticationError{Reason: "missing " + signatureHeader + " header"}
	}

	tsHeader := headers.Get(timestampHeader)
	if tsHeader == "" {
		return &AuthenticationError{Reason: "missing " + timestampHeader + " header"}
	}

	ts, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return &AuthenticationError{Reason: "invalid timestamp " + strconv.Quote(tsHeader)}
	}

	if age := a.now().Unix() - ts; age > int64(a.maxSkew.Seconds()) {
		return &AuthenticationError{Reason: fmt.Sprintf("timestamp too old (age %ds, max %ds)", age, int64(a.maxSkew.Seconds()))}
	}

	version, hash, found := strings.Cut(signature, "=")
	if !found || version != signatureVersion {
		return &AuthenticationError{Reason: "unsupported signature version " + strconv.Quote(version)}
	}

	// The base string uses the header exactly as sent. Slack signed those
	// bytes, so re-serializing the parsed integer would change the string
	// for timestamps like "+17..." or "017..."; the parsed value serves
	// the skew check only.
	mac := hmac.New(sha256.New, []byte(a.secret()))
	fmt.Fprintf(mac, "%s:%s:", signatureVersion, tsHeader)
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(hash)) != 1 {
		return &AuthenticationError{Reason: "signature mismatch"}
	}

	return nil
}
