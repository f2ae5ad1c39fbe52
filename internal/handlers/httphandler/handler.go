package httphandler

import (
	syncsvc "ShopWithMoysklad/internal/sync"
	"ShopWithMoysklad/internal/version"
	"ShopWithMoysklad/pkg/logging"
	"encoding/json"
	"fmt"
	"github.com/julienschmidt/httprouter"
	"net/http"
)

// Handler - тонкий HTTP-слой над четырьмя операциями движка.
// Авторизации здесь нет, слой закрывается снаружи.
type Handler struct {
	service *syncsvc.Service
}

func NewHandler(service *syncsvc.Service) *Handler {
	return &Handler{service: service}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	logger := logging.GetLogger()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		logger.Errorf("failed to send response, error: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) HandlerVersion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerVersion")
	defer logger.Info("End HandlerVersion")

	v := version.GetVersion()
	_, err := fmt.Fprintf(w, "Version %s", v.String())
	if err != nil {
		logger.Errorf("failed to send response, error: %v", err)
		return
	}
}

func (h *Handler) HandlerCategoryPlan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerCategoryPlan")
	defer logger.Info("End HandlerCategoryPlan")

	plan, err := h.service.ComputeCategorySyncPlan()
	if err != nil {
		logger.Errorf("failed ComputeCategorySyncPlan, error: %v", err)
		respondError(w, http.StatusBadGateway, err)
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

func (h *Handler) HandlerCategoryExecute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerCategoryExecute")
	defer logger.Info("End HandlerCategoryExecute")

	var plan syncsvc.SyncPlan
	err := json.NewDecoder(r.Body).Decode(&plan)
	if err != nil {
		logger.Errorf("failed to decode plan, error: %v", err)
		respondError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.ExecuteCategorySyncPlan(&plan)
	if err != nil {
		logger.Errorf("failed ExecuteCategorySyncPlan, error: %v", err)
		respondError(w, http.StatusBadRequest, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) HandlerSkuPlan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSkuPlan")
	defer logger.Info("End HandlerSkuPlan")

	plan, err := h.service.ComputeSkuResolutionPlan()
	if err != nil {
		logger.Errorf("failed ComputeSkuResolutionPlan, error: %v", err)
		respondError(w, http.StatusBadGateway, err)
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

type skuExecuteRequest struct {
	Plan        *syncsvc.SkuResolutionPlan `json:"plan"`
	Resolutions syncsvc.UserResolutions    `json:"resolutions"`
}

func (h *Handler) HandlerSkuExecute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSkuExecute")
	defer logger.Info("End HandlerSkuExecute")

	var req skuExecuteRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Errorf("failed to decode request, error: %v", err)
		respondError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.ExecuteSkuResolutionPlan(req.Plan, req.Resolutions)
	if err != nil {
		logger.Errorf("failed ExecuteSkuResolutionPlan, error: %v", err)
		respondError(w, http.StatusBadRequest, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
