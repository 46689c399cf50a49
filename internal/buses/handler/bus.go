package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"busline/internal/buses/service"
	apperrors "busline/pkg/errors"
	httputil "busline/pkg/http"
	"busline/pkg/logger"
	"busline/pkg/model"
)

type BusHandler struct {
	service service.BusService
	log     *logger.Logger
}

func NewBusHandler(service service.BusService, log *logger.Logger) *BusHandler {
	return &BusHandler{
		service: service,
		log:     log,
	}
}

func (h *BusHandler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var buses []*model.Bus
	if err := json.NewDecoder(r.Body).Decode(&buses); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Request body must be a non-empty array of buses")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Add", "error", writeErr)
		}
		return
	}

	created, err := h.service.AddBuses(r.Context(), buses)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Add", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, "Buses added successfully", created); err != nil {
		h.log.Error("failed to write created response", "handler", "Add", "error", err)
	}
}

func (h *BusHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := model.BusFilter{
		Source:      query.Get("source"),
		Destination: query.Get("destination"),
		Date:        query.Get("date"),
		Time:        query.Get("time"),
	}

	buses, err := h.service.Search(r.Context(), filter)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, buses); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "error", err)
	}
}

func (h *BusHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bus, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, bus); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BusHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/buses/add", h.Add)
	router.GET("/api/buses", h.Search)
	router.GET("/api/buses/:id", h.GetByID)
}
