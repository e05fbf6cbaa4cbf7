package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
)

// SignatureVerifier authenticates a raw webhook body against its signature header.
type SignatureVerifier interface {
	Verify(payload []byte, header string) error
}

// StripeSignatureVerifier checks the Stripe-Signature header
// ("t=<unix>,v1=<hex hmac-sha256>") and rejects stale timestamps.
type StripeSignatureVerifier struct {
	Secret    string
	Tolerance time.Duration
}

func NewStripeSignatureVerifier(secret string, tolerance time.Duration) StripeSignatureVerifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return StripeSignatureVerifier{Secret: strings.TrimSpace(secret), Tolerance: tolerance}
}

func (v StripeSignatureVerifier) Verify(payload []byte, header string) error {
	if v.Secret == "" {
		return errors.New("webhook secret is not configured")
	}
	if strings.TrimSpace(header) == "" {
		return errors.New("missing signature header")
	}
	return webhook.ValidatePayloadWithTolerance(payload, header, v.Secret, v.Tolerance)
}

// SignStripePayload builds a Stripe-Signature header for payload, e.g. for
// replaying stored events against a local endpoint.
func SignStripePayload(payload []byte, secret string, ts time.Time) string {
	unix := strconv.FormatInt(ts.Unix(), 10)
	signed := append([]byte(unix+"."), payload...)
	sig := computeHMAC(signed, []byte(secret), sha256.New)
	return fmt.Sprintf("t=%s,v1=%s", unix, hex.EncodeToString(sig))
}

func computeHMAC(payload, secret []byte, hashFunc func() hash.Hash) []byte {
	mac := hmac.New(hashFunc, secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
