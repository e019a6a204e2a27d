package client

import "ets/pkg/models"

// EventType enumerates the closed set of payload notifications a client
// emits. One event is delivered per inbound or outbound payload.
type EventType string

const (
	EventText         EventType = "text"
	EventImage        EventType = "image"
	EventAssetMeta    EventType = "asset.meta"
	EventAssetData    EventType = "asset.data"
	EventLocation     EventType = "location"
	EventPing         EventType = "ping"
	EventEdit         EventType = "edit"
	EventDelete       EventType = "delete"
	EventHide         EventType = "hide"
	EventClear        EventType = "clear"
	EventConfirmation EventType = "confirmation"
)

// Event is one notification from a client's stream. Cross-message references
// are plain id-valued fields; the referenced message may legitimately no
// longer exist on the receiving side.
type Event struct {
	Type EventType

	// Message carries the payload for content-bearing types and edits.
	Message models.Message

	// ReplacesID is the id an edit replaces (EventEdit only).
	ReplacesID string

	// TargetID is the removed message id (EventDelete, EventHide).
	TargetID string

	// ConversationID identifies the cleared conversation (EventClear). For
	// other types the conversation lives on Message.
	ConversationID string

	// Confirmation is set for EventConfirmation.
	Confirmation *ConfirmationEvent
}

// ConfirmationEvent references one or more earlier message ids and the
// receipt status to append to each of them.
type ConfirmationEvent struct {
	From    string
	Status  models.ConfirmationStatus
	FirstID string
	MoreIDs []string
}

// TargetIDs returns the primary target followed by the secondary targets.
func (c *ConfirmationEvent) TargetIDs() []string {
	out := make([]string, 0, 1+len(c.MoreIDs))
	out = append(out, c.FirstID)
	out = append(out, c.MoreIDs...)
	return out
}

// EventHandler receives events in emission order for one client. Handlers
// must not block; they run on the client's delivery goroutine.
type EventHandler func(Event)
