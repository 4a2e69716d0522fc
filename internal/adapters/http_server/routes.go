package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bookingmx/internal/adapters/observability"
	"bookingmx/internal/domain"
	"bookingmx/internal/routegraph"
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNoPath):
		return "no_path"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (h *Handlers) listCities(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, map[string][]string{"cities": h.Graph.Cities()})
}

func (h *Handlers) getCity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	n, err := h.Graph.Neighbors(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, map[string]any{"city": name, "neighbors": n})
}

func (h *Handlers) putCity(w http.ResponseWriter, r *http.Request) {
	var req cityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.Graph.AddCity(name, req.Neighbors); err != nil {
		writeError(w, err)
		return
	}
	n, _ := h.Graph.Neighbors(name)
	writeJSON(w, http.StatusOK, map[string]any{"city": name, "neighbors": n})
}

func (h *Handlers) deleteCity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.Graph.RemoveCity(name) {
		writeProblem(w, http.StatusNotFound, "Not Found", "city "+name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) putConnection(w http.ResponseWriter, r *http.Request) {
	var req routegraph.Connection
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Graph.AddConnection(req.From, req.To, req.Distance); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handlers) deleteConnection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !h.Graph.RemoveConnection(q.Get("from"), q.Get("to")) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no connection "+q.Get("from")+"-"+q.Get("to"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) shortestPath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	route, err := h.Graph.ShortestPath(q.Get("from"), q.Get("to"))
	observability.ObserveRoute("shortest_path", outcome(err))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

func (h *Handlers) nearby(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.ParseFloat(r.URL.Query().Get("max"), 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid max", "max must be a number")
		return
	}
	got, err := h.Graph.NearbyCities(chi.URLParam(r, "name"), limit)
	observability.ObserveRoute("nearby", outcome(err))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": got})
}
