package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"bookingmx/internal/app"
	"bookingmx/internal/domain"
	"bookingmx/internal/routegraph"
)

type Handlers struct {
	Cmd   *app.ReservationService
	Q     *app.QueryService
	Graph *routegraph.Graph
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", h.createReservation)
			r.Get("/", h.listReservations)
			r.Get("/{id}", h.getReservation)
			r.Delete("/{id}", h.deleteReservation)
			r.Post("/{id}/confirm", h.transition(h.Cmd.Confirm))
			r.Post("/{id}/check-in", h.transition(h.Cmd.CheckIn))
			r.Post("/{id}/complete", h.transition(h.Cmd.Complete))
			r.Post("/{id}/cancel", h.transition(h.Cmd.Cancel))
			r.Put("/{id}/dates", h.updateDates)
		})
		r.Get("/availability", h.availability)
		r.Get("/quotes", h.quote)
		r.Get("/summary", h.summary)

		if h.Graph != nil {
			r.Get("/cities", h.listCities)
			r.Get("/cities/{name}", h.getCity)
			r.Put("/cities/{name}", h.putCity)
			r.Delete("/cities/{name}", h.deleteCity)
			r.Get("/cities/{name}/nearby", h.nearby)
			r.Put("/connections", h.putConnection)
			r.Delete("/connections", h.deleteConnection)
			r.Get("/routes/shortest", h.shortestPath)
		}
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain sentinels onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	detail := reason(err)
	switch {
	case errors.Is(err, errBadRequest):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", detail)
	case errors.Is(err, domain.ErrInvalidReservation):
		writeProblem(w, http.StatusBadRequest, "Invalid Reservation", detail)
	case errors.Is(err, domain.ErrInvalidArgument):
		writeProblem(w, http.StatusBadRequest, "Invalid Argument", detail)
	case errors.Is(err, domain.ErrNoPath):
		writeProblem(w, http.StatusNotFound, "No Path", detail)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", detail)
	case errors.Is(err, domain.ErrInvalidTransition):
		writeProblem(w, http.StatusConflict, "Invalid Transition", detail)
	case errors.Is(err, domain.ErrDuplicate):
		writeProblem(w, http.StatusConflict, "Conflict", detail)
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// reason drops the sentinel prefix so clients see only the human message.
func reason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached serves v with a weak ETag and answers If-None-Match with 304.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

// wantsText reports whether the caller asked for the plain-text rendering.
func wantsText(r *http.Request) bool {
	return r.URL.Query().Get("format") == "text" || strings.HasPrefix(r.Header.Get("Accept"), "text/plain")
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s + "\n"))
}
