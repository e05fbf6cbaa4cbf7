package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStripeSignatureVerifier(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)
	v := NewStripeSignatureVerifier(" whsec_test ", 5*time.Minute)

	assert.NoError(t, v.Verify(payload, SignStripePayload(payload, "whsec_test", time.Now())))

	cases := map[string]string{
		"empty header":  "",
		"wrong secret":  SignStripePayload(payload, "whsec_other", time.Now()),
		"stale":         SignStripePayload(payload, "whsec_test", time.Now().Add(-time.Hour)),
		"garbage":       "not-a-signature",
		"missing v1":    "t=12345",
		"tampered body": SignStripePayload([]byte(`{"id":"evt_2"}`), "whsec_test", time.Now()),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, v.Verify(payload, header))
		})
	}
}

func TestStripeSignatureVerifierRequiresSecret(t *testing.T) {
	payload := []byte(`{}`)
	v := NewStripeSignatureVerifier("", 0)

	assert.Error(t, v.Verify(payload, SignStripePayload(payload, "", time.Now())))
}
