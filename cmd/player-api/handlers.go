package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/foot-player/pkg/metrics"
	"github.com/Sternrassler/foot-player/pkg/player"
	"github.com/Sternrassler/foot-player/pkg/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type playerHandler struct {
	store  store.Store
	logger zerolog.Logger
}

func newMux(s store.Store, logger zerolog.Logger) *http.ServeMux {
	h := &playerHandler{store: s, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /players", h.list)
	mux.HandleFunc("POST /players", h.create)
	mux.HandleFunc("GET /players/{id}", h.get)
	mux.HandleFunc("PUT /players/{id}", h.update)
	mux.HandleFunc("DELETE /players/{id}", h.delete)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

func (h *playerHandler) list(w http.ResponseWriter, r *http.Request) {
	players, err := h.store.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (h *playerHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *playerHandler) create(w http.ResponseWriter, r *http.Request) {
	var in player.Player
	if err := decodeBody(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	// identities are always assigned by the store
	in.ID = ""

	p, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *playerHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch player.Patch
	if err := decodeBody(w, r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if patch.IsEmpty() {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: player.ErrEmptyPatch.Error()})
		return
	}

	p, err := h.store.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *playerHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var errEmptyBody = errors.New("request body is empty")

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errEmptyBody
	}
	return sonic.Unmarshal(body, target)
}

// writeError maps store errors to status codes. Unexpected errors are
// logged and reported as 500 without details.
func (h *playerHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, store.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, store.ErrDuplicateID):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		h.logger.Error().Err(err).Msg("Store request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}
