package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"vet-records/internal/domain/failure"
	"vet-records/internal/middleware"
)

// Mount registra list/get/create/update/delete sobre r (ya posicionado en /<entidad>).
// PUT solo se registra si la entidad admite update.
func Mount[In any, Out any](r chi.Router, svc *Service[In, Out]) {
	r.Get("/", listHandler(svc))
	r.Post("/", createHandler(svc))
	r.Get("/{id}", getHandler(svc))
	if svc.Meta().Updatable {
		r.Put("/{id}", updateHandler(svc))
	}
	r.Delete("/{id}", deleteHandler(svc))
}

type listResponse[Out any] struct {
	Items  []Out `json:"items"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

type rowsResponse struct {
	RowsAffected int64 `json:"rows_affected"`
}

type deleteResponse struct {
	Soft         bool   `json:"soft"`
	Message      string `json:"message,omitempty"`
	RowsAffected int64  `json:"rows_affected"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Field    string `json:"field,omitempty"`
	Reason   string `json:"reason,omitempty"`
	RefID    int64  `json:"ref_id,omitempty"`
	Incident string `json:"incident,omitempty"`
}

func listHandler[In any, Out any](svc *Service[In, Out]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		p := ListParams{
			Limit:  atoiOr(q.Get("limit"), DefaultLimit),
			Offset: atoiOr(q.Get("offset"), 0),
			Filter: q.Get("q"),
		}.normalize()

		items, err := svc.List(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse[Out]{Items: items, Limit: p.Limit, Offset: p.Offset})
	}
}

func getHandler[In any, Out any](svc *Service[In, Out]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		rec, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func createHandler[In any, Out any](svc *Service[In, Out]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		id, err := svc.Create(r.Context(), actorFrom(r), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

func updateHandler[In any, Out any](svc *Service[In, Out]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var in In
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		n, err := svc.Update(r.Context(), actorFrom(r), id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		if n == 0 {
			writeError(w, failure.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rowsResponse{RowsAffected: n})
	}
}

func deleteHandler[In any, Out any](svc *Service[In, Out]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		res, err := svc.Delete(r.Context(), actorFrom(r), id)
		if err != nil {
			writeError(w, err)
			return
		}
		// la baja lógica siempre responde con el mensaje del procedimiento
		if !res.Soft && res.RowsAffected == 0 {
			writeError(w, failure.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Soft: res.Soft, Message: res.Message, RowsAffected: res.RowsAffected})
	}
}

func writeError(w http.ResponseWriter, err error) {
	if ve, ok := failure.AsValidation(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: ve.Error(), Field: ve.Field, Reason: ve.Reason, RefID: ve.RefID,
		})
		return
	}
	if de, ok := failure.AsDuplicate(err); ok {
		writeJSON(w, http.StatusConflict, errorResponse{Error: de.Error(), Field: de.Field})
		return
	}
	if fe, ok := failure.AsFatal(err); ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fe.Error(), Incident: fe.Incident})
		return
	}

	switch {
	case errors.Is(err, failure.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, failure.ErrUnsupported):
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func actorFrom(r *http.Request) Actor {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		return Actor{}
	}
	return Actor{UserID: claims.UserID, Role: claims.Role}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
