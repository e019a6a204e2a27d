// Package projector folds one instance's client event stream into its
// message cache so the cache always reflects current conversation state:
// edits replace, deletes and clears remove, confirmations append, split
// asset payloads merge.
package projector

import (
	"ets/pkg/cache"
	"ets/pkg/client"
	"ets/pkg/logger"
	"ets/pkg/metrics"
	"ets/pkg/models"
)

// Option mutates projector configuration.
type Option func(*Projector)

// WithObserver attaches a hook invoked for every applied event, after the
// cache mutation. Used to feed the event journal.
func WithObserver(fn func(client.Event)) Option {
	return func(p *Projector) {
		if fn != nil {
			p.observer = fn
		}
	}
}

// Projector applies events to one instance's message cache. Events from one
// client arrive in emission order on that client's delivery goroutine; each
// Apply is atomic with respect to concurrent cache readers.
type Projector struct {
	messages *cache.Cache[string, models.Message]
	observer func(client.Event)
}

func New(messages *cache.Cache[string, models.Message], options ...Option) *Projector {
	p := &Projector{messages: messages}
	for _, option := range options {
		option(p)
	}
	return p
}

// Handler adapts the projector to the client's subscription mechanism.
func (p *Projector) Handler() client.EventHandler {
	return p.Apply
}

// Apply folds one event into the cache. Dangling references (an edit or
// confirmation naming an id that is not cached) are defined no-ops, never
// errors: the target may have been evicted or never materialized.
func (p *Projector) Apply(ev client.Event) {
	switch ev.Type {
	case client.EventText:
		msg := ev.Message
		msg.Content.LinkPreviews = stripPreviewImages(msg.Content.LinkPreviews)
		p.messages.Set(msg.ID, msg)
	case client.EventImage, client.EventLocation, client.EventPing:
		p.messages.Set(ev.Message.ID, ev.Message)
	case client.EventAssetMeta:
		p.applyAssetMeta(ev.Message)
	case client.EventAssetData:
		p.applyAssetData(ev.Message)
	case client.EventEdit:
		p.applyEdit(ev)
	case client.EventClear:
		p.applyClear(ev.ConversationID)
	case client.EventDelete, client.EventHide:
		p.messages.Delete(ev.TargetID)
	case client.EventConfirmation:
		p.applyConfirmation(ev.Confirmation)
	default:
		logger.Warn("projector_unknown_event", "type", string(ev.Type))
		return
	}
	metrics.EventsProjected.WithLabelValues(string(ev.Type)).Inc()
	if p.observer != nil {
		p.observer(ev)
	}
}

// applyAssetMeta caches a placeholder carrying only the sender-declared
// metadata; the data payload arrives later under the same id.
func (p *Projector) applyAssetMeta(msg models.Message) {
	if msg.Content.Asset != nil {
		msg.Content.Asset = &models.AssetContent{Original: msg.Content.Asset.Original}
	}
	p.messages.Set(msg.ID, msg)
}

// applyAssetData merges the uploaded data with the metadata placeholder so
// the final entry carries both, then replaces the placeholder. The merge is
// a single atomic cache step so a concurrently delivered placeholder is
// never half-applied.
func (p *Projector) applyAssetData(msg models.Message) {
	p.messages.Upsert(msg.ID, func(prev models.Message, ok bool) models.Message {
		if msg.Content.Asset != nil {
			msg.Content.Asset.PreviewData = nil
			if ok && prev.Content.Asset != nil && prev.Content.Asset.Original != nil {
				msg.Content.Asset.Original = prev.Content.Asset.Original
			}
		}
		return msg
	})
}

// applyEdit records the edited content under its new id, then drops the
// entry for the id it replaces. A self-edit or a pre-existing new id is a
// plain upsert followed by a best-effort delete of the original.
func (p *Projector) applyEdit(ev client.Event) {
	msg := ev.Message
	msg.Content.LinkPreviews = stripPreviewImages(msg.Content.LinkPreviews)
	p.messages.Set(msg.ID, msg)
	if ev.ReplacesID != "" && ev.ReplacesID != msg.ID {
		p.messages.Delete(ev.ReplacesID)
	}
}

// applyClear removes every cached message belonging to the conversation,
// regardless of id.
func (p *Projector) applyClear(conversationID string) {
	for id, msg := range p.messages.All() {
		if msg.ConversationID == conversationID {
			p.messages.Delete(id)
		}
	}
}

// applyConfirmation appends a receipt to each cached target. Targets
// confirmed before they are locally known are silently dropped; a message is
// never retroactively materialized from its confirmation.
func (p *Projector) applyConfirmation(conf *client.ConfirmationEvent) {
	if conf == nil {
		return
	}
	record := models.Confirmation{Status: conf.Status, From: conf.From}
	for _, id := range conf.TargetIDs() {
		if id == "" {
			continue
		}
		// appends from concurrently delivered confirmations must all land,
		// so the read-modify-write happens under the cache lock
		p.messages.Update(id, func(msg models.Message) models.Message {
			msg.Confirmations = append(msg.Confirmations, record)
			return msg
		})
	}
}

// stripPreviewImages drops embedded preview bytes from link previews, keeping
// metadata only, to bound cache memory.
func stripPreviewImages(previews []models.LinkPreview) []models.LinkPreview {
	for i := range previews {
		previews[i].ImageData = nil
	}
	return previews
}
