package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ets/pkg/models"
	"ets/pkg/utils"
	"ets/pkg/validation"
)

// conversationRequest is the shared body shape for per-instance operations.
// Each handler reads the fields its operation uses; validation happens per
// operation.
type conversationRequest struct {
	ConversationID string               `json:"conversationId"`
	Text           string               `json:"text,omitempty"`
	LinkPreviews   []models.LinkPreview `json:"linkPreviews,omitempty"`
	MessageID      string               `json:"messageId,omitempty"`
	FirstMessageID string               `json:"firstMessageId,omitempty"`
	MoreMessageIDs []string             `json:"moreMessageIds,omitempty"`
	Data           []byte               `json:"data,omitempty"`
	FileName       string               `json:"fileName,omitempty"`
	MimeType       string               `json:"mimeType,omitempty"`
	Width          int                  `json:"width,omitempty"`
	Height         int                  `json:"height,omitempty"`
	Latitude       float64              `json:"latitude,omitempty"`
	Longitude      float64              `json:"longitude,omitempty"`
	LocationName   string               `json:"locationName,omitempty"`
	Zoom           int                  `json:"zoom,omitempty"`
	ReactionType   string               `json:"type,omitempty"`
	Archived       bool                 `json:"archived,omitempty"`
	Muted          bool                 `json:"muted,omitempty"`
	Typing         bool                 `json:"typing,omitempty"`
	Status         string               `json:"status,omitempty"`
	ExpireAfterMs  int64                `json:"expireAfterMillis,omitempty"`
}

type sendResponse struct {
	InstanceID string `json:"instanceId"`
	Name       string `json:"name,omitempty"`
	MessageID  string `json:"messageId,omitempty"`
}

// decodeOp reads the instance id from the path and the JSON body, and runs
// the common conversation-id check. It writes the error response itself and
// reports ok=false when the request is unusable.
func (h *Handler) decodeOp(w http.ResponseWriter, r *http.Request, needConversation bool) (id string, req conversationRequest, ok bool) {
	id = mux.Vars(r)["id"]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return "", req, false
	}
	if needConversation {
		var v validation.Validator
		v.Require("conversationId", req.ConversationID)
		if err := v.Err(); err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return "", req, false
		}
	}
	return id, req, true
}

// respond writes the standard mutation response, filling the instance name
// when the instance is still registered.
func (h *Handler) respond(w http.ResponseWriter, instanceID, messageID string) {
	resp := sendResponse{InstanceID: instanceID, MessageID: messageID}
	if inst, err := h.reg.Get(instanceID); err == nil {
		resp.Name = inst.Name
	}
	_ = utils.JSONWrite(w, http.StatusOK, resp)
}

func (h *Handler) sendText(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	var v validation.Validator
	v.Require("text", req.Text)
	v.NonNegative("expireAfterMillis", req.ExpireAfterMs)
	if err := v.Err(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgID, err := h.reg.SendText(r.Context(), id, req.ConversationID, req.Text, req.LinkPreviews, expiry(req.ExpireAfterMs))
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, msgID)
}

func (h *Handler) updateText(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	var v validation.Validator
	v.Require("text", req.Text)
	v.Require("messageId", req.MessageID)
	if err := v.Err(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgID, err := h.reg.UpdateText(r.Context(), id, req.ConversationID, req.MessageID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, msgID)
}

func (h *Handler) sendImage(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	var v validation.Validator
	v.RequireBytes("data", req.Data)
	v.Require("mimeType", req.MimeType)
	if err := v.Err(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgID, err := h.reg.SendImage(r.Context(), id, req.ConversationID, req.Data, req.MimeType, req.Width, req.Height, expiry(req.ExpireAfterMs))
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, msgID)
}

func (h *Handler) sendFile(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	var v validation.Validator
	v.RequireBytes("data", req.Data)
	v.Require("fileName", req.FileName)
	if err := v.Err(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgID, err := h.reg.SendFile(r.Context(), id, req.ConversationID, req.Data, req.FileName, req.MimeType, expiry(req.ExpireAfterMs))
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, msgID)
}

func (h *Handler) sendLocation(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	msgID, err := h.reg.SendLocation(r.Context(), id, req.ConversationID, req.Latitude, req.Longitude, req.LocationName, req.Zoom)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, msgID)
}

func (h *Handler) sendPing(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	msgID, err := h.reg.SendPing(r.Context(), id, req.ConversationID, expiry(req.ExpireAfterMs))
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, msgID)
}

func (h *Handler) sendReaction(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	var v validation.Validator
	v.Require("messageId", req.MessageID)
	if err := v.Err(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgID, err := h.reg.SendReaction(r.Context(), id, req.ConversationID, req.MessageID, req.ReactionType)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, msgID)
}

// confirmation builds the handler for the four confirmation routes. Ephemeral
// variants verify the first target is cached and report 404 otherwise.
func (h *Handler) confirmation(ephemeral bool, status models.ConfirmationStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, req, ok := h.decodeOp(w, r, true)
		if !ok {
			return
		}
		var v validation.Validator
		v.Require("firstMessageId", req.FirstMessageID)
		if err := v.Err(); err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		var (
			msgID string
			err   error
		)
		if ephemeral {
			msgID, err = h.reg.SendEphemeralConfirmation(r.Context(), id, req.ConversationID, status, req.FirstMessageID, req.MoreMessageIDs...)
		} else {
			msgID, err = h.reg.SendConfirmation(r.Context(), id, req.ConversationID, status, req.FirstMessageID, req.MoreMessageIDs...)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		h.respond(w, id, msgID)
	}
}

func (h *Handler) deleteLocal(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	var v validation.Validator
	v.Require("messageId", req.MessageID)
	if err := v.Err(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.reg.DeleteMessageLocal(r.Context(), id, req.ConversationID, req.MessageID); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, "")
}

func (h *Handler) deleteEverywhere(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	var v validation.Validator
	v.Require("messageId", req.MessageID)
	if err := v.Err(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.reg.DeleteMessageEveryone(r.Context(), id, req.ConversationID, req.MessageID); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, "")
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	if err := h.reg.ClearConversation(r.Context(), id, req.ConversationID); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, "")
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	if err := h.reg.SetArchived(r.Context(), id, req.ConversationID, req.Archived); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, "")
}

func (h *Handler) mute(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	if err := h.reg.SetMuted(r.Context(), id, req.ConversationID, req.Muted); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, "")
}

func (h *Handler) sendTyping(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	if err := h.reg.SendTyping(r.Context(), id, req.ConversationID, req.Typing); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, "")
}

func (h *Handler) sendSessionReset(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	if err := h.reg.ResetSession(r.Context(), id, req.ConversationID); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, "")
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, false)
	if !ok {
		return
	}
	var v validation.Validator
	v.Require("status", req.Status)
	v.OneOf("status", req.Status, "none", "available", "away", "busy")
	if err := v.Err(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.reg.SetAvailability(r.Context(), id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, "")
}

func (h *Handler) getMessages(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeOp(w, r, true)
	if !ok {
		return
	}
	msgs, err := h.reg.GetMessages(id, req.ConversationID)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		InstanceID string           `json:"instanceId"`
		Messages   []models.Message `json:"messages"`
	}{InstanceID: id, Messages: msgs})
}

func expiry(ms int64) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
