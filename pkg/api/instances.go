package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"ets/pkg/logger"
	"ets/pkg/models"
	"ets/pkg/registry"
	"ets/pkg/utils"
	"ets/pkg/validation"
)

type createInstanceRequest struct {
	Email         string          `json:"email"`
	Password      string          `json:"password"`
	Backend       string          `json:"backend"`
	CustomBackend *models.Backend `json:"customBackend,omitempty"`
	DeviceName    string          `json:"deviceName"`
	Name          string          `json:"name"`
}

type instanceResponse struct {
	InstanceID string `json:"instanceId"`
	Name       string `json:"name"`
	Backend    string `json:"backend,omitempty"`
}

func (h *Handler) createInstance(w http.ResponseWriter, r *http.Request) {
	var req createInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var v validation.Validator
	v.Require("email", req.Email)
	v.Require("password", req.Password)
	if req.CustomBackend == nil {
		v.OneOf("backend", req.Backend, "production", "prod", "staging")
	}
	if err := v.Err(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.reg.Create(r.Context(), registry.CreateRequest{
		Email:         req.Email,
		Password:      req.Password,
		Backend:       req.Backend,
		CustomBackend: req.CustomBackend,
		DeviceName:    req.DeviceName,
		Name:          req.Name,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, instanceResponse{InstanceID: id, Name: req.Name})
}

func (h *Handler) getInstance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	inst, err := h.reg.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, instanceResponse{
		InstanceID: inst.ID,
		Name:       inst.Name,
		Backend:    inst.Backend.Name,
	})
}

func (h *Handler) listInstances(w http.ResponseWriter, r *http.Request) {
	out := map[string]instanceResponse{}
	for id, inst := range h.reg.Instances() {
		out[id] = instanceResponse{
			InstanceID: inst.ID,
			Name:       inst.Name,
			Backend:    inst.Backend.Name,
		}
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}

func (h *Handler) deleteInstance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.reg.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, instanceResponse{InstanceID: id})
}

type removeClientsRequest struct {
	Email         string          `json:"email"`
	Password      string          `json:"password"`
	Backend       string          `json:"backend"`
	CustomBackend *models.Backend `json:"customBackend,omitempty"`
}

func (h *Handler) removeAllClients(w http.ResponseWriter, r *http.Request) {
	var req removeClientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	var v validation.Validator
	v.Require("email", req.Email)
	v.Require("password", req.Password)
	if req.CustomBackend == nil {
		v.OneOf("backend", req.Backend, "production", "prod", "staging")
	}
	if err := v.Err(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	removed, err := h.reg.RemoveAllClients(r.Context(), req.Email, req.Password, req.Backend, req.CustomBackend)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Info("clients_removed", "email", req.Email, "count", len(removed))
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Removed []string `json:"removed"`
	}{Removed: removed})
}

func (h *Handler) getJournal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	entries, err := h.reg.Journal(id)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		InstanceID string      `json:"instanceId"`
		Entries    interface{} `json:"entries"`
	}{InstanceID: id, Entries: entries})
}

func (h *Handler) getLog(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Lines []string `json:"lines"`
	}{Lines: logger.Ring.Lines()})
}
