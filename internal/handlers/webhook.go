package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"botpedidos/internal/config"
	"botpedidos/internal/models"
	"botpedidos/internal/whatsapp"
)

const (
	headerReply    = "Coincidencias:"
	noResultsReply = "No se encontraron productos para tu busqueda."
	maxReplyLines  = 5
)

// ProductSearcher is the catalog collaborator: free text in, ordered
// matches out. The handler takes the first matches and never writes.
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string) ([]models.SearchResult, error)
}

// ─── GET /webhook ─────────────────────────────────────────────────────────────

// VerifyWebhook answers the Meta subscription handshake. The three raw
// query inputs are written to the audit log before any check runs, so
// malformed and malicious attempts leave a trace too.
func VerifyWebhook(cfg *config.Config, auditLog *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := r.URL.Query().Get("hub.mode")
		token := r.URL.Query().Get("hub.verify_token")
		challenge := r.URL.Query().Get("hub.challenge")

		auditLog.Info("GET /webhook",
			zap.String("hub.mode", mode),
			zap.String("hub.verify_token", token),
			zap.String("hub.challenge", challenge),
		)

		// An empty configured secret can never verify: otherwise a request
		// with no token at all would match it.
		if mode != "subscribe" || cfg.VerifyToken == "" || token != cfg.VerifyToken {
			// Single fixed detail: do not reveal which input mismatched.
			http.Error(w, "Invalid token", http.StatusForbidden)
			return
		}

		n, err := strconv.Atoi(challenge)
		if err != nil {
			http.Error(w, "invalid hub.challenge", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, n)
	}
}

// ─── POST /webhook ────────────────────────────────────────────────────────────

// HandleWebhook processes one inbound event end to end: decode, extract
// the first text message, search the catalog, send the reply. A nil client
// means the gateway is unconfigured and every request is refused with 503
// before the body is even read.
func HandleWebhook(searcher ProductSearcher, client *whatsapp.Client, auditLog *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			http.Error(w, "WhatsApp client no configurado", http.StatusServiceUnavailable)
			return
		}

		rawBody, err := io.ReadAll(r.Body)
		if err != nil {
			internalError(w, auditLog, fmt.Errorf("read body: %w", err))
			return
		}

		var payload models.WebhookPayload
		if err := json.Unmarshal(rawBody, &payload); err != nil {
			internalError(w, auditLog, fmt.Errorf("unmarshal payload: %w", err))
			return
		}
		auditLog.Info("POST /webhook payload", zap.ByteString("payload", rawBody))

		msg, reason := firstMessage(&payload)
		if msg == nil {
			auditLog.Info("payload ignored", zap.String("reason", reason))
			writeStatus(w, "ignored")
			return
		}
		auditLog.Info("inbound message",
			zap.String("from", msg.From),
			zap.String("id", msg.ID),
			zap.String("type", msg.Type),
		)

		// Non-text messages (image, location, ...) have no usable body and
		// fall into the same ignored terminal state as blank text.
		var text string
		if msg.Text != nil {
			text = strings.TrimSpace(msg.Text.Body)
		}
		if text == "" || msg.From == "" {
			auditLog.Info("payload ignored", zap.String("reason", "empty text or sender"))
			writeStatus(w, "ignored")
			return
		}

		results, err := searcher.SearchProducts(r.Context(), text)
		if err != nil {
			internalError(w, auditLog, fmt.Errorf("search products: %w", err))
			return
		}

		reply := formatReply(results)

		if _, err := client.SendMessage(r.Context(), msg.From, reply); err != nil {
			detail := fmt.Sprintf("WhatsApp API error: %v", err)
			var apiErr *whatsapp.APIError
			if errors.As(err, &apiErr) {
				detail = fmt.Sprintf("WhatsApp API error %d: %s", apiErr.StatusCode, apiErr.Body)
			}
			auditLog.Error(detail)
			http.Error(w, detail, http.StatusBadGateway)
			return
		}

		writeStatus(w, "ok")
	}
}

// firstMessage descends entry[0].changes[0].value.messages[0]. Absence at
// any level is not an error: status callbacks and delivery receipts arrive
// with those arrays missing or empty. The reason names the first absent
// level for the audit trail.
func firstMessage(p *models.WebhookPayload) (*models.InboundMessage, string) {
	if len(p.Entry) == 0 {
		return nil, "no entries"
	}
	if len(p.Entry[0].Changes) == 0 {
		return nil, "no changes"
	}
	if len(p.Entry[0].Changes[0].Value.Messages) == 0 {
		return nil, "no messages"
	}
	return &p.Entry[0].Changes[0].Value.Messages[0], ""
}

// formatReply renders up to maxReplyLines matches, one per line, under the
// header, or the fixed no-results sentence.
func formatReply(results []models.SearchResult) string {
	if len(results) == 0 {
		return noResultsReply
	}
	if len(results) > maxReplyLines {
		results = results[:maxReplyLines]
	}
	lines := make([]string, 0, len(results))
	for _, p := range results {
		lines = append(lines, fmt.Sprintf("%s - %.2f - stock:%d", p.Nombre, p.Precio, p.StockActual))
	}
	return headerReply + "\n" + strings.Join(lines, "\n")
}

func writeStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": status}); err != nil {
		// Headers are gone by now; nothing left to do but note it.
		zap.L().Error("encode response", zap.Error(err))
	}
}

// internalError logs the full failure server-side and answers with a
// generic message: internal detail never reaches the caller on a 500.
func internalError(w http.ResponseWriter, auditLog *zap.Logger, err error) {
	auditLog.Error("error procesando webhook", zap.Error(err), zap.Stack("stack"))
	http.Error(w, "Error interno procesando webhook", http.StatusInternalServerError)
}
