package models

// MessageType tags the payload category of a cached message.
type MessageType string

const (
	TypeText         MessageType = "text"
	TypeImage        MessageType = "image"
	TypeAssetMeta    MessageType = "asset.meta"
	TypeAssetData    MessageType = "asset.data"
	TypeLocation     MessageType = "location"
	TypePing         MessageType = "ping"
	TypeReaction     MessageType = "reaction"
	TypeEdit         MessageType = "edit"
	TypeDelete       MessageType = "delete"
	TypeHide         MessageType = "hide"
	TypeClear        MessageType = "clear"
	TypeConfirmation MessageType = "confirmation"
)

// ConfirmationStatus is the receipt kind carried by a confirmation message.
type ConfirmationStatus string

const (
	ConfirmationDelivered ConfirmationStatus = "delivered"
	ConfirmationRead      ConfirmationStatus = "read"
)

// Confirmation records one receipt received for a message. The list on a
// message is append-only.
type Confirmation struct {
	Status ConfirmationStatus `json:"status"`
	From   string             `json:"from"`
}

// Message is one entry in an instance's message cache, keyed by the
// protocol-assigned message id (unique per instance, not globally).
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	From           string      `json:"from"`
	Type           MessageType `json:"type"`
	// Timestamp is unix milliseconds.
	Timestamp     int64          `json:"timestamp"`
	Content       Content        `json:"content"`
	Confirmations []Confirmation `json:"confirmations,omitempty"`
	// ExpiresAt is the absolute ephemeral expiry (unix ms); zero when the
	// message is not ephemeral.
	ExpiresAt int64 `json:"expiresAt,omitempty"`
}

// Content holds the type-specific payload. Exactly the fields matching the
// message type are populated.
type Content struct {
	Text         string           `json:"text,omitempty"`
	LinkPreviews []LinkPreview    `json:"linkPreviews,omitempty"`
	Asset        *AssetContent    `json:"asset,omitempty"`
	Location     *LocationContent `json:"location,omitempty"`
	Reaction     *ReactionContent `json:"reaction,omitempty"`
}

// LinkPreview is metadata extracted from a URL in a text message. ImageData
// carries the embedded preview bytes on the wire; the projector strips it
// before caching.
type LinkPreview struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Summary   string `json:"summary,omitempty"`
	ImageData []byte `json:"imageData,omitempty"`
}

// AssetContent describes an attachment. A metadata message carries only
// Original; the later data message carries the upload keys (and possibly a
// preview). The projector merges the two under the shared id.
type AssetContent struct {
	Original *AssetOriginal `json:"original,omitempty"`
	Key      string         `json:"key,omitempty"`
	Token    string         `json:"token,omitempty"`
	SHA256   string         `json:"sha256,omitempty"`
	// PreviewData is embedded thumbnail bytes; stripped before caching.
	PreviewData []byte `json:"previewData,omitempty"`
}

// AssetOriginal is the sender-declared description of an attachment.
type AssetOriginal struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

type LocationContent struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"locationName,omitempty"`
	Zoom      int     `json:"zoom,omitempty"`
}

type ReactionContent struct {
	// OriginalMessageID is the message the reaction applies to.
	OriginalMessageID string `json:"originalMessageId"`
	// Type is the reaction glyph; empty means the reaction was removed.
	Type string `json:"type"`
}
