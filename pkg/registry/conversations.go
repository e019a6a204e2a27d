package registry

import (
	"context"
	"fmt"
	"time"

	"ets/pkg/client"
	"ets/pkg/logger"
	"ets/pkg/metrics"
	"ets/pkg/models"
)

// send resolves the instance, delegates to its client, and reflects the
// resulting message into the cache immediately so a subsequent GetMessages
// sees self-sent messages without waiting for the event round trip.
func (r *Registry) send(ctx context.Context, instanceID, conversationID string, p client.Payload) (string, error) {
	inst, err := r.Get(instanceID)
	if err != nil {
		return "", err
	}
	res, err := inst.Client.Send(ctx, conversationID, p)
	if err != nil {
		return "", fmt.Errorf("send %s: %w", p.Type, err)
	}

	switch p.Type {
	case models.TypeText, models.TypeImage, models.TypeAssetMeta, models.TypeLocation, models.TypePing, models.TypeReaction:
		// the client may already have delivered the send's events, in which
		// case the projected entry is richer than the raw payload (stripped
		// previews, merged asset halves); seed the cache only when projection
		// has not materialized the message yet
		if _, ok := inst.Messages.Get(res.MessageID); !ok {
			msg := client.MessageFromPayload(p, res.MessageID, conversationID, inst.Client.UserID(), res.Time)
			inst.Messages.Set(res.MessageID, msg)
		}
	case models.TypeEdit:
		if _, ok := inst.Messages.Get(res.MessageID); !ok {
			msg := client.MessageFromPayload(p, res.MessageID, conversationID, inst.Client.UserID(), res.Time)
			msg.Type = models.TypeText
			inst.Messages.Set(res.MessageID, msg)
		}
		if p.TargetID != "" && p.TargetID != res.MessageID {
			inst.Messages.Delete(p.TargetID)
		}
	case models.TypeDelete, models.TypeHide:
		inst.Messages.Delete(p.TargetID)
	case models.TypeClear:
		for id, msg := range inst.Messages.All() {
			if msg.ConversationID == conversationID {
				inst.Messages.Delete(id)
			}
		}
	}

	metrics.MessagesSent.WithLabelValues(string(p.Type)).Inc()
	logger.Debug("payload_sent", "instance", instanceID, "conversation", conversationID, "type", string(p.Type), "message", res.MessageID)
	return res.MessageID, nil
}

// SendText sends a text message; expireAfter > 0 makes it ephemeral.
func (r *Registry) SendText(ctx context.Context, instanceID, conversationID, text string, previews []models.LinkPreview, expireAfter time.Duration) (string, error) {
	p := client.Text(text, previews...)
	if expireAfter > 0 {
		p = p.Ephemeral(expireAfter)
	}
	return r.send(ctx, instanceID, conversationID, p)
}

// UpdateText edits an earlier text message. Readers find the new text only
// under the returned id.
func (r *Registry) UpdateText(ctx context.Context, instanceID, conversationID, originalID, text string) (string, error) {
	return r.send(ctx, instanceID, conversationID, client.Edit(originalID, text))
}

// SendImage sends a raw image.
func (r *Registry) SendImage(ctx context.Context, instanceID, conversationID string, data []byte, mimeType string, width, height int, expireAfter time.Duration) (string, error) {
	p := client.Image(data, mimeType, width, height)
	if expireAfter > 0 {
		p = p.Ephemeral(expireAfter)
	}
	return r.send(ctx, instanceID, conversationID, p)
}

// SendFile sends a generic attachment.
func (r *Registry) SendFile(ctx context.Context, instanceID, conversationID string, data []byte, fileName, mimeType string, expireAfter time.Duration) (string, error) {
	p := client.File(data, fileName, mimeType)
	if expireAfter > 0 {
		p = p.Ephemeral(expireAfter)
	}
	return r.send(ctx, instanceID, conversationID, p)
}

// SendLocation sends a location.
func (r *Registry) SendLocation(ctx context.Context, instanceID, conversationID string, latitude, longitude float64, name string, zoom int) (string, error) {
	return r.send(ctx, instanceID, conversationID, client.Location(latitude, longitude, name, zoom))
}

// SendPing sends a knock.
func (r *Registry) SendPing(ctx context.Context, instanceID, conversationID string, expireAfter time.Duration) (string, error) {
	p := client.Ping()
	if expireAfter > 0 {
		p = p.Ephemeral(expireAfter)
	}
	return r.send(ctx, instanceID, conversationID, p)
}

// SendReaction reacts to an earlier message.
func (r *Registry) SendReaction(ctx context.Context, instanceID, conversationID, originalID, reactionType string) (string, error) {
	return r.send(ctx, instanceID, conversationID, client.Reaction(originalID, reactionType))
}

// SendConfirmation sends a delivery/read receipt for one or more messages.
func (r *Registry) SendConfirmation(ctx context.Context, instanceID, conversationID string, status models.ConfirmationStatus, firstID string, moreIDs ...string) (string, error) {
	return r.send(ctx, instanceID, conversationID, client.Confirmation(status, firstID, moreIDs...))
}

// SendEphemeralConfirmation confirms an ephemeral message. Unlike the plain
// variant, the target must be locally known; confirming an unknown ephemeral
// message is a not-found condition.
func (r *Registry) SendEphemeralConfirmation(ctx context.Context, instanceID, conversationID string, status models.ConfirmationStatus, firstID string, moreIDs ...string) (string, error) {
	inst, err := r.Get(instanceID)
	if err != nil {
		return "", err
	}
	if _, ok := inst.Messages.Get(firstID); !ok {
		return "", fmt.Errorf("%w: %s", ErrMessageNotFound, firstID)
	}
	return r.send(ctx, instanceID, conversationID, client.Confirmation(status, firstID, moreIDs...))
}

// DeleteMessageLocal removes a message for this instance only.
func (r *Registry) DeleteMessageLocal(ctx context.Context, instanceID, conversationID, messageID string) error {
	_, err := r.send(ctx, instanceID, conversationID, client.Hide(messageID))
	return err
}

// DeleteMessageEveryone removes a message for all participants.
func (r *Registry) DeleteMessageEveryone(ctx context.Context, instanceID, conversationID, messageID string) error {
	_, err := r.send(ctx, instanceID, conversationID, client.Delete(messageID))
	return err
}

// ClearConversation removes every cached message of the conversation and
// tells the backend the conversation was cleared.
func (r *Registry) ClearConversation(ctx context.Context, instanceID, conversationID string) error {
	_, err := r.send(ctx, instanceID, conversationID, client.Clear())
	return err
}

// SetArchived toggles the conversation's archived flag.
func (r *Registry) SetArchived(ctx context.Context, instanceID, conversationID string, archived bool) error {
	inst, err := r.Get(instanceID)
	if err != nil {
		return err
	}
	if err := inst.Client.SetArchived(ctx, conversationID, archived); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

// SetMuted toggles the conversation's muted flag.
func (r *Registry) SetMuted(ctx context.Context, instanceID, conversationID string, muted bool) error {
	inst, err := r.Get(instanceID)
	if err != nil {
		return err
	}
	if err := inst.Client.SetMuted(ctx, conversationID, muted); err != nil {
		return fmt.Errorf("mute: %w", err)
	}
	return nil
}

// SendTyping signals the typing state into a conversation.
func (r *Registry) SendTyping(ctx context.Context, instanceID, conversationID string, typing bool) error {
	inst, err := r.Get(instanceID)
	if err != nil {
		return err
	}
	if err := inst.Client.SendTyping(ctx, conversationID, typing); err != nil {
		return fmt.Errorf("typing: %w", err)
	}
	return nil
}

// ResetSession resets the cryptographic session with the conversation.
func (r *Registry) ResetSession(ctx context.Context, instanceID, conversationID string) error {
	inst, err := r.Get(instanceID)
	if err != nil {
		return err
	}
	if err := inst.Client.ResetSession(ctx, conversationID); err != nil {
		return fmt.Errorf("session reset: %w", err)
	}
	return nil
}

// SetAvailability publishes the instance's availability status.
func (r *Registry) SetAvailability(ctx context.Context, instanceID, status string) error {
	inst, err := r.Get(instanceID)
	if err != nil {
		return err
	}
	if err := inst.Client.SetAvailability(ctx, status); err != nil {
		return fmt.Errorf("availability: %w", err)
	}
	return nil
}
