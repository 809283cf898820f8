package qstash

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignatureHeader carries the signed JWT on QStash callbacks.
const SignatureHeader = "Upstash-Signature"

const signatureIssuer = "Upstash"

var (
	// ErrMissingSignature is returned when a callback carries no signature.
	ErrMissingSignature = errors.New("qstash: missing signature")

	// ErrInvalidSignature is returned when no signing key validates the signature.
	ErrInvalidSignature = errors.New("qstash: invalid signature")
)

type signatureClaims struct {
	Body string `json:"body"`
	jwt.RegisteredClaims
}

// Verifier validates callback signatures against the current and next signing keys.
type Verifier struct {
	keys     [][]byte
	leeway   time.Duration
	timeFunc func() time.Time
}

// NewVerifier creates a Verifier. At least one key must be non-empty.
func NewVerifier(currentKey, nextKey string) (*Verifier, error) {
	var keys [][]byte
	for _, k := range []string{currentKey, nextKey} {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("qstash: at least one signing key is required")
	}
	return &Verifier{keys: keys, leeway: time.Second, timeFunc: time.Now}, nil
}

// Verify checks that signature is a JWT signed with one of the keys, issued by
// QStash for callbackURL (skipped when empty), and bound to body.
func (v *Verifier) Verify(signature string, body []byte, callbackURL string) error {
	if signature == "" {
		return ErrMissingSignature
	}

	var lastErr error
	for _, key := range v.keys {
		err := v.verifyWithKey(key, signature, body, callbackURL)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", ErrInvalidSignature, lastErr)
}

func (v *Verifier) verifyWithKey(key []byte, signature string, body []byte, callbackURL string) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(signatureIssuer),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.timeFunc),
	}
	if callbackURL != "" {
		opts = append(opts, jwt.WithSubject(callbackURL))
	}

	claims := &signatureClaims{}
	if _, err := jwt.ParseWithClaims(signature, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, opts...); err != nil {
		return err
	}

	if strings.TrimRight(claims.Body, "=") != strings.TrimRight(BodyHash(body), "=") {
		return errors.New("body hash mismatch")
	}
	return nil
}

// BodyHash returns the value QStash puts in the body claim for body.
func BodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.URLEncoding.EncodeToString(sum[:])
}
