package handler

import (
	"io"
	"net/http"
	"net/url"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider/chatprovider"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider/smsprovider"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/orchestrator"
	"github.com/MaqroSolutions/Dealerships-sub000/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const signatureHeader = "X-Hub-Signature-256"

// setupWebhookRoutes registers the two provider inbound webhooks (§6).
// These sit outside the /api/v1 auth chain: a bearer token makes no sense
// for a provider-to-gateway callback, so each route verifies the shared
// webhook secret itself instead.
func (m *HandlerManager) setupWebhookRoutes(router *mux.Router) {
	webhooks := router.PathPrefix("/webhooks").Subrouter()
	webhooks.HandleFunc("/sms", m.handleSMSWebhook).Methods(http.MethodPost)
	webhooks.HandleFunc("/chat", m.handleChatWebhook).Methods(http.MethodPost)
}

func (m *HandlerManager) handleSMSWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return
	}

	if m.deps.SMS == nil || !m.deps.SMS.VerifySignature(body, r.Header.Get(signatureHeader)) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "signature verification failed"})
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse form body"})
		return
	}
	in := smsprovider.InboundWebhook{
		MessageSid: form.Get("MessageSid"),
		From:       form.Get("From"),
		To:         form.Get("To"),
		Body:       form.Get("Body"),
	}.ToInboundMessage()

	m.dispatchInbound(r, w, "sms", in.FromPhone, in.ToPhone, in.Body, in.SenderName)
}

func (m *HandlerManager) handleChatWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return
	}

	if m.deps.Chat == nil || !m.deps.Chat.VerifySignature(body, r.Header.Get(signatureHeader)) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "signature verification failed"})
		return
	}

	in, err := chatprovider.ParseInbound(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse webhook payload"})
		return
	}

	m.dispatchInbound(r, w, "chat", in.FromPhone, in.ToPhone, in.Body, in.SenderName)
}

// dispatchInbound resolves the receiving number to a dealership and hands
// the message to the Message Flow Orchestrator (§4.11). Internal failures
// return 5xx without retry, per §6/§7's "internal error returns 5xx and is
// not retried by the gateway itself".
func (m *HandlerManager) dispatchInbound(r *http.Request, w http.ResponseWriter, providerName, fromPhone, toPhone, text, senderName string) {
	dealershipID, err := m.deps.PhoneResolver.Resolve(r.Context(), toPhone)
	if err != nil {
		logger.Base().Warn("inbound message from unresolvable dealership phone",
			zap.String("provider", providerName), zap.String("to", toPhone))
		writeError(w, err)
		return
	}

	outcome, err := m.deps.Orchestrator.Handle(r.Context(), orchestrator.Inbound{
		DealershipID: dealershipID,
		Provider:     providerName,
		FromPhone:    fromPhone,
		ToPhone:      toPhone,
		Text:         text,
		SenderName:   senderName,
	})
	if err != nil {
		logger.Base().Error("orchestrator failed to handle inbound message", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "processed",
		"lead_id":    outcome.LeadID,
		"handoff":    outcome.Handoff,
		"scheduled":  outcome.Scheduled,
		"note":       outcome.Note,
	})
}
