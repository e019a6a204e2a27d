package client

import (
	"time"

	"ets/pkg/models"
)

// Payload is a typed outgoing message built by the helpers below and handed
// to Client.Send.
type Payload struct {
	Type models.MessageType

	Text         string
	LinkPreviews []models.LinkPreview
	Asset        *models.AssetContent
	Location     *models.LocationContent
	Reaction     *models.ReactionContent

	// TargetID references an earlier message: the original id for edits, the
	// removed id for delete/hide, the primary id for confirmations.
	TargetID string
	// MoreTargetIDs are the secondary confirmation targets.
	MoreTargetIDs []string
	Status        models.ConfirmationStatus

	// ExpireAfter makes the message ephemeral when positive.
	ExpireAfter time.Duration
}

// Text builds a plain text payload, optionally with link previews.
func Text(text string, previews ...models.LinkPreview) Payload {
	return Payload{Type: models.TypeText, Text: text, LinkPreviews: previews}
}

// Edit builds a payload replacing the message at originalID with new text.
func Edit(originalID, text string) Payload {
	return Payload{Type: models.TypeEdit, TargetID: originalID, Text: text}
}

// Image builds a raw image payload.
func Image(data []byte, mimeType string, width, height int) Payload {
	return Payload{Type: models.TypeImage, Asset: &models.AssetContent{
		Original:    &models.AssetOriginal{MimeType: mimeType, Size: int64(len(data)), Width: width, Height: height},
		PreviewData: data,
	}}
}

// File builds a generic attachment payload.
func File(data []byte, fileName, mimeType string) Payload {
	return Payload{Type: models.TypeAssetMeta, Asset: &models.AssetContent{
		Original: &models.AssetOriginal{Name: fileName, MimeType: mimeType, Size: int64(len(data))},
	}}
}

// Location builds a location payload.
func Location(latitude, longitude float64, name string, zoom int) Payload {
	return Payload{Type: models.TypeLocation, Location: &models.LocationContent{
		Latitude: latitude, Longitude: longitude, Name: name, Zoom: zoom,
	}}
}

// Ping builds a knock payload.
func Ping() Payload {
	return Payload{Type: models.TypePing}
}

// Reaction builds a reaction payload referencing an earlier message. An
// empty reaction type removes the reaction.
func Reaction(originalID, reactionType string) Payload {
	return Payload{Type: models.TypeReaction, Reaction: &models.ReactionContent{
		OriginalMessageID: originalID, Type: reactionType,
	}}
}

// Confirmation builds a receipt payload for one or more earlier messages.
func Confirmation(status models.ConfirmationStatus, firstID string, moreIDs ...string) Payload {
	return Payload{Type: models.TypeConfirmation, Status: status, TargetID: firstID, MoreTargetIDs: moreIDs}
}

// Delete builds a delete-for-everyone payload.
func Delete(targetID string) Payload {
	return Payload{Type: models.TypeDelete, TargetID: targetID}
}

// Hide builds a local-only removal payload.
func Hide(targetID string) Payload {
	return Payload{Type: models.TypeHide, TargetID: targetID}
}

// Clear builds a conversation-clear payload.
func Clear() Payload {
	return Payload{Type: models.TypeClear}
}

// Ephemeral returns a copy of the payload with an expiry timer attached.
func (p Payload) Ephemeral(d time.Duration) Payload {
	p.ExpireAfter = d
	return p
}

// MessageFromPayload materializes the message a sent payload produces, as it
// should appear in the sender's own cache. ts is unix milliseconds.
func MessageFromPayload(p Payload, id, conversationID, from string, ts int64) models.Message {
	m := models.Message{
		ID:             id,
		ConversationID: conversationID,
		From:           from,
		Type:           p.Type,
		Timestamp:      ts,
		Content: models.Content{
			Text:         p.Text,
			LinkPreviews: p.LinkPreviews,
			Asset:        p.Asset,
			Location:     p.Location,
			Reaction:     p.Reaction,
		},
	}
	if p.ExpireAfter > 0 {
		m.ExpiresAt = ts + p.ExpireAfter.Milliseconds()
	}
	return m
}
