package signer

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Method is the closed set of HTTP verbs the venue API accepts. Using a
// dedicated type keeps body-vs-query placement and Content-Type selection
// exhaustive instead of branching on raw strings.
type Method int

const (
	Get Method = iota
	Post
	Put
	Delete
)

func (m Method) String() string {
	switch m {
	case Get:
		return http.MethodGet
	case Post:
		return http.MethodPost
	case Put:
		return http.MethodPut
	case Delete:
		return http.MethodDelete
	}
	return ""
}

// HasBody reports whether request data travels in the JSON body. For Get
// and Delete, data is serialized into the path's query string instead.
func (m Method) HasBody() bool {
	return m == Post || m == Put
}

// ContentType returns the venue-required Content-Type for m, or "" when
// the header must be absent.
func (m Method) ContentType() string {
	switch m {
	case Post, Put:
		return "application/json"
	case Delete:
		return "application/x-www-form-urlencoded"
	}
	return ""
}

// Credentials is one resolved set of venue trading credentials.
type Credentials struct {
	AccountID string
	Key       string // ed25519:{base58} public key
	Secret    string // ed25519:{base58} seed
}

// Venue auth header names.
const (
	HeaderTimestamp = "orderly-timestamp"
	HeaderAccountID = "orderly-account-id"
	HeaderKey       = "orderly-key"
	HeaderSignature = "orderly-signature"
)

// AuthHeaders builds the signed header set for one venue request at the
// current wall clock. For Get/Delete, path must already carry the query
// string and body must be nil; for Post/Put, body must be the exact bytes
// that will be transmitted.
func AuthHeaders(creds Credentials, method Method, path string, body []byte) (http.Header, error) {
	return AuthHeadersAt(creds, method, path, body, time.Now())
}

// AuthHeadersAt is AuthHeaders with an explicit timestamp, for
// reproducible signatures.
func AuthHeadersAt(creds Credentials, method Method, path string, body []byte, at time.Time) (http.Header, error) {
	ts := strconv.FormatInt(at.UnixMilli(), 10)
	message := CanonicalMessage(ts, method, path, body)

	sig, err := Sign(creds.Secret, message)
	if err != nil {
		return nil, fmt.Errorf("sign %s %s: %w", method, path, err)
	}

	h := http.Header{}
	h.Set(HeaderTimestamp, ts)
	h.Set(HeaderAccountID, creds.AccountID)
	h.Set(HeaderKey, creds.Key)
	h.Set(HeaderSignature, sig)
	if ct := method.ContentType(); ct != "" {
		h.Set("Content-Type", ct)
	}
	return h, nil
}

// CanonicalMessage is the venue's signing string: fields concatenated
// with no separators, method uppercase, body empty for Get/Delete.
func CanonicalMessage(timestamp string, method Method, path string, body []byte) string {
	return timestamp + method.String() + path + string(body)
}
