package models

import "github.com/google/uuid"

// ─── WhatsApp inbound payload ────────────────────────────────────────────────

// WebhookPayload mirrors the body Meta posts to the webhook. Every array in
// it may be absent or empty: status callbacks and delivery receipts arrive
// through the same endpoint with no messages at all.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	Messages []InboundMessage `json:"messages"`
	Statuses []MessageStatus  `json:"statuses"`
}

type InboundMessage struct {
	From string       `json:"from"` // sender phone number
	ID   string       `json:"id"`
	Type string       `json:"type"` // "text", "image", "location", ...
	Text *TextContent `json:"text,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

// MessageStatus is a delivery/read receipt. Decoded only so the payload
// lands fully in the audit log; never acted on.
type MessageStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ─── Catalog ─────────────────────────────────────────────────────────────────

// Product is a catalog row. Field names keep the store's Spanish schema.
type Product struct {
	ID           uuid.UUID `db:"id"`
	Nombre       string    `db:"nombre"`
	Descripcion  string    `db:"descripcion"`
	Precio       float64   `db:"precio"`
	CodigoBarras string    `db:"codigo_barras"`
	StockActual  int       `db:"stock_actual"`
	CategoriaID  uuid.UUID `db:"categoria_id"`
	ImagenURL    string    `db:"imagen_url"`
	Estado       bool      `db:"estado"`
}

// SearchResult is the projection of a product the reply formatter needs.
type SearchResult struct {
	Nombre      string  `db:"nombre"`
	Precio      float64 `db:"precio"`
	StockActual int     `db:"stock_actual"`
}
