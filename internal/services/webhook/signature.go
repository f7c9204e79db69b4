package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/stripe/stripe-go/v72/webhook"
)

// Verifier authenticates a raw webhook body against its signature header.
type Verifier interface {
	Verify(body []byte, header string) error
}

// HMACVerifier checks a hex encoded HMAC-SHA256 of the raw body.
type HMACVerifier struct {
	secret string
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: secret}
}

func (v *HMACVerifier) Verify(body []byte, header string) error {
	return Verify(v.secret, body, header)
}

// Verify compares in constant time. An optional "sha256=" prefix is accepted.
func Verify(secret string, body []byte, header string) error {
	if secret == "" || header == "" {
		return ErrInvalidSignature
	}

	header = strings.TrimPrefix(strings.TrimSpace(header), "sha256=")
	got, err := hex.DecodeString(header)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the header value Verify accepts for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// StripeVerifier checks the Stripe-Signature header, including its timestamp
// tolerance.
type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

func (v *StripeVerifier) Verify(body []byte, header string) error {
	if v.secret == "" || header == "" {
		return ErrInvalidSignature
	}
	if err := webhook.ValidatePayload(body, header, v.secret); err != nil {
		return ErrInvalidSignature
	}
	return nil
}
