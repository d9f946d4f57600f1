package handler

import (
	"context"
	"net/http"

	"innkeep/internal/rooms/service"
	apperrors "innkeep/pkg/errors"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// httprouter does not let a static segment share a position with a
// parameter, so /rooms/available and /rooms/type/:roomType are dispatched
// from the parameter routes.
const (
	segmentAvailable = "available"
	segmentType      = "type"
	segmentHotel     = "hotel"
)

type RoomHandler struct {
	service service.RoomService
	log     *logger.Logger
}

func NewRoomHandler(service service.RoomService, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		log:     log,
	}
}

type listFunc func(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RoomCreate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	room, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, "Room created successfully", room); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RoomHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "GetAll", h.service.GetAll)
}

// Get serves GET /api/v1/rooms/:roomId and GET /api/v1/rooms/available.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	segment := ps.ByName("segment")
	if segment == segmentAvailable {
		h.list(w, r, "GetAvailable", h.service.GetAvailable)
		return
	}

	room, err := h.service.GetByID(r.Context(), segment)
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Room retrieved successfully", room); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// GetNested serves GET /api/v1/rooms/type/:roomType and
// GET /api/v1/rooms/hotel/:hotelId.
func (h *RoomHandler) GetNested(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	value := ps.ByName("value")

	switch ps.ByName("segment") {
	case segmentType:
		h.list(w, r, "GetByType", func(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
			return h.service.GetByType(ctx, value, limit, offset)
		})
	case segmentHotel:
		h.list(w, r, "GetByHotel", func(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
			return h.service.GetByHotel(ctx, value, limit, offset)
		})
	default:
		h.writeError(w, r, "GetNested", apperrors.NotFound("Route"))
	}
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.RoomUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, r, "Update", err)
		return
	}

	room, err := h.service.Update(r.Context(), ps.ByName("segment"), &update)
	if err != nil {
		h.writeError(w, r, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Room updated successfully", room); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("segment")); err != nil {
		h.writeError(w, r, "Delete", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Room deleted successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) list(w http.ResponseWriter, r *http.Request, handler string, fetch listFunc) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, handler, err)
		return
	}

	rooms, total, err := fetch(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, handler, err)
		return
	}

	if err := httputil.WritePaginated(w, "Rooms retrieved successfully", rooms, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", handler, "operation", "WritePaginated", "error", err)
	}
}

func (h *RoomHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.WithContext(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rooms", h.Create)
	router.GET("/api/v1/rooms", h.GetAll)
	router.GET("/api/v1/rooms/:segment", h.Get)
	router.PUT("/api/v1/rooms/:segment", h.Update)
	router.DELETE("/api/v1/rooms/:segment", h.Delete)
	router.GET("/api/v1/rooms/:segment/:value", h.GetNested)
}
