package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider/chatprovider"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider/smsprovider"
	"github.com/stretchr/testify/require"
)

func signHMAC(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSMSWebhook_RejectsMissingSignature(t *testing.T) {
	m := &HandlerManager{deps: Deps{SMS: smsprovider.NewClient("sid", "token", "webhook-secret")}}
	body := strings.NewReader("Body=hi&From=%2B15551234567&To=%2B15557654321")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/sms", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	m.handleSMSWebhook(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSMSWebhook_RejectsWhenClientUnconfigured(t *testing.T) {
	m := &HandlerManager{deps: Deps{}}
	req := httptest.NewRequest(http.MethodPost, "/webhooks/sms", strings.NewReader(""))
	rec := httptest.NewRecorder()

	m.handleSMSWebhook(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatWebhook_RejectsBadSignature(t *testing.T) {
	m := &HandlerManager{deps: Deps{Chat: chatprovider.NewClient("https://example.test", "api-key", "webhook-secret")}}
	payload := []byte(`{"messageId":"1","from":"+15551234567","to":"+15557654321","text":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/chat", strings.NewReader(string(payload)))
	req.Header.Set(signatureHeader, "sha256=deadbeef")
	rec := httptest.NewRecorder()

	m.handleChatWebhook(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatWebhook_RejectsUnparsablePayloadOnceSignatureIsValid(t *testing.T) {
	m := &HandlerManager{deps: Deps{Chat: chatprovider.NewClient("https://example.test", "api-key", "webhook-secret")}}
	payload := []byte("not json")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/chat", strings.NewReader(string(payload)))
	req.Header.Set(signatureHeader, signHMAC("webhook-secret", payload))
	rec := httptest.NewRecorder()

	m.handleChatWebhook(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
