package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerify_AcceptsValidSignature(t *testing.T) {
	v := NewVerifier("topsecret", zap.NewNop())
	body := []byte(`{"id":1,"email":"x@example.com"}`)

	assert.NoError(t, v.Verify(body, sign("topsecret", body)))
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	v := NewVerifier("topsecret", zap.NewNop())
	body := []byte(`{"id":1}`)

	err := v.Verify(body, sign("othersecret", body))

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_RejectsMutatedBody(t *testing.T) {
	v := NewVerifier("topsecret", zap.NewNop())
	digest := sign("topsecret", []byte(`{"id":1}`))

	err := v.Verify([]byte(`{"id":2}`), digest)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_RejectsMissingDigest(t *testing.T) {
	v := NewVerifier("topsecret", zap.NewNop())

	err := v.Verify([]byte(`{}`), "")

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_RejectsMalformedBase64(t *testing.T) {
	v := NewVerifier("topsecret", zap.NewNop())

	err := v.Verify([]byte(`{}`), "not!!base64")

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_NoSecretAcceptsUnverified(t *testing.T) {
	v := NewVerifier("", zap.NewNop())

	assert.NoError(t, v.Verify([]byte(`{}`), ""))
	assert.NoError(t, v.Verify([]byte(`{}`), "anything"))
}
