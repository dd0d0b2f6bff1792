// Package storage resolves opaque storage keys to time-limited access URLs.
package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// SignedObject pairs a storage key with its resolved time-limited URL.
type SignedObject struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// URLSigner resolves an opaque storage key to a time-limited access URL.
// The production implementation fronts an object store; tests substitute
// their own.
type URLSigner interface {
	Sign(ctx context.Context, key string) (SignedObject, error)
}

// HMACSigner issues URLs of the form
// <base>/<key>?exp=<unix>&sig=<hex> verified by the media file server.
type HMACSigner struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

// NewHMACSigner returns a signer with the given secret and base URL.
func NewHMACSigner(secret, baseURL string, ttl time.Duration) *HMACSigner {
	return &HMACSigner{
		secret:  []byte(secret),
		baseURL: baseURL,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Sign resolves key to a signed URL valid until now+ttl.
func (s *HMACSigner) Sign(_ context.Context, key string) (SignedObject, error) {
	if key == "" {
		return SignedObject{}, fmt.Errorf("empty storage key")
	}

	exp := s.now().Add(s.ttl).Unix()
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", key, exp)
	sig := hex.EncodeToString(mac.Sum(nil))

	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	q.Set("sig", sig)

	return SignedObject{
		Key: key,
		URL: s.baseURL + "/" + url.PathEscape(key) + "?" + q.Encode(),
	}, nil
}

// Verify checks a signed URL's expiry and signature. Used by the media
// file server counterpart.
func (s *HMACSigner) Verify(key string, exp int64, sig string) bool {
	if s.now().Unix() > exp {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", key, exp)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}
