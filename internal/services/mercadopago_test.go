package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
)

func signManifest(secret, dataID, requestID, ts string) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	const (
		secret    = "test-secret"
		dataID    = "123456789"
		requestID = "req-abc"
		ts        = "1700000000"
	)
	svc := &MercadoPagoService{webhookSecret: secret}

	v1 := signManifest(secret, dataID, requestID, ts)
	header := fmt.Sprintf("ts=%s,v1=%s", ts, v1)

	if !svc.VerifySignature(header, requestID, dataID) {
		t.Error("valid signature rejected")
	}
	// Spaces after the comma appear in real deliveries.
	if !svc.VerifySignature(fmt.Sprintf("ts=%s, v1=%s", ts, v1), requestID, dataID) {
		t.Error("valid signature with spaced header rejected")
	}

	if svc.VerifySignature(header, requestID, "987654321") {
		t.Error("signature accepted for a different data id")
	}
	if svc.VerifySignature(fmt.Sprintf("ts=%s,v1=%s", "1700000001", v1), requestID, dataID) {
		t.Error("signature accepted with a tampered timestamp")
	}
	if svc.VerifySignature("", requestID, dataID) {
		t.Error("empty header accepted")
	}
	if svc.VerifySignature("garbage", requestID, dataID) {
		t.Error("malformed header accepted")
	}
}

func TestVerifySignatureNoSecret(t *testing.T) {
	svc := &MercadoPagoService{}
	v1 := signManifest("", "1", "r", "1")
	if svc.VerifySignature("ts=1,v1="+v1, "r", "1") {
		t.Error("verification must fail when no secret is configured")
	}
}
