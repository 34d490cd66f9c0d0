// -----------------------------------------------------------------------
// Webhook Handler - Inbound monitoring alert admission
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medeor/internal/common"
	"github.com/ternarybob/medeor/internal/models"
	"github.com/ternarybob/medeor/internal/services/research"
)

// WebhookHandler receives monitoring alert payloads and runs the
// synchronous admission path. Accepted alerts are processed on detached
// goroutines; the caller only waits for parse, validate, rank, register.
type WebhookHandler struct {
	admission *research.Admission
	logger    arbor.ILogger
}

func NewWebhookHandler(admission *research.Admission) *WebhookHandler {
	return &WebhookHandler{
		admission: admission,
		logger:    common.GetLogger(),
	}
}

// AlertHandler handles POST /webhook/alert, the notification endpoint
// for the monitoring service. Subscription confirmations are
// acknowledged without creating a job.
func (h *WebhookHandler) AlertHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	if msgType, _ := payload["Type"].(string); msgType == "SubscriptionConfirmation" {
		h.logger.Info().Msg("Subscription confirmation received")
		WriteJSON(w, http.StatusOK, map[string]string{
			"message": "subscription confirmation received",
		})
		return
	}

	h.admit(w, payload)
}

// TestAlertHandler handles POST /test/alert, which accepts bare alert
// payloads for manual testing without the notification envelope.
func (h *WebhookHandler) TestAlertHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	h.admit(w, payload)
}

func (h *WebhookHandler) decodePayload(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return nil, false
	}
	return payload, true
}

func (h *WebhookHandler) admit(w http.ResponseWriter, payload map[string]interface{}) {
	job, err := h.admission.Admit(payload)
	if err != nil {
		var malformed *models.MalformedAlertError
		if errors.As(err, &malformed) {
			WriteError(w, http.StatusBadRequest, malformed.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Alert admission failed")
		WriteError(w, http.StatusInternalServerError, "failed to process alert")
		return
	}

	if job == nil {
		WriteJSON(w, http.StatusOK, map[string]string{
			"message": "skipped",
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"job_id": job.ID(),
		"status": string(job.Status()),
	})
}
