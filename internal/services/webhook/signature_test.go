package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "whsec_test"

func TestVerify(t *testing.T) {
	body := []byte(`{"paymentId":"pay_1","status":"paid"}`)
	good := Sign(testSecret, body)

	tests := []struct {
		name    string
		secret  string
		body    []byte
		header  string
		wantErr bool
	}{
		{name: "valid", secret: testSecret, body: body, header: good},
		{name: "valid with prefix", secret: testSecret, body: body, header: "sha256=" + good},
		{name: "upper case hex", secret: testSecret, body: body, header: fmt.Sprintf("%X", mustDecode(good))},
		{name: "tampered body", secret: testSecret, body: []byte(`{"paymentId":"pay_1","status":"paid "}`), header: good, wantErr: true},
		{name: "wrong secret", secret: "other", body: body, header: good, wantErr: true},
		{name: "not hex", secret: testSecret, body: body, header: "zz-not-hex", wantErr: true},
		{name: "truncated", secret: testSecret, body: body, header: good[:10], wantErr: true},
		{name: "missing header", secret: testSecret, body: body, header: "", wantErr: true},
		{name: "empty secret", secret: "", body: body, header: Sign("", body), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.secret, tt.body, tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSignature)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStripeVerifier(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	v := NewStripeVerifier(testSecret)

	ts := time.Now().Unix()
	assert.NoError(t, v.Verify(body, stripeHeader(testSecret, ts, body)))
	assert.ErrorIs(t, v.Verify(body, stripeHeader("other", ts, body)), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(body, stripeHeader(testSecret, ts-3600, body)), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(body, ""), ErrInvalidSignature)
}

func stripeHeader(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func mustDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
