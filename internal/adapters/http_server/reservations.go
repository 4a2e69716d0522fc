package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"bookingmx/internal/app"
	"bookingmx/internal/domain"
)

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := optionalDate(req.CheckIn)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := optionalDate(req.CheckOut)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Cmd.Create(r.Context(), app.CreateInput{
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		CheckIn:    in,
		CheckOut:   out,
		RoomType:   domain.RoomType(strings.ToUpper(strings.TrimSpace(req.RoomType))),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/reservations/"+res.ID)
	writeJSON(w, http.StatusCreated, toResponse(res))
}

func (h *Handlers) getReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.Q.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, toResponse(res))
}

// listReservations applies at most one filter, checked in this order:
// name, email, status, room_type, check_in+check_out.
func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	var (
		items []domain.Reservation
		err   error
	)
	switch {
	case q.Has("name"):
		items, err = h.Q.ByGuestName(ctx, q.Get("name"))
	case q.Has("email"):
		items, err = h.Q.ByEmail(ctx, q.Get("email"))
	case q.Has("status"):
		var st domain.Status
		if strings.TrimSpace(q.Get("status")) == "" {
			items, err = h.Q.ByStatus(ctx, "")
		} else if st, err = domain.ParseStatus(q.Get("status")); err == nil {
			items, err = h.Q.ByStatus(ctx, st)
		}
	case q.Has("room_type"):
		var rt domain.RoomType
		if strings.TrimSpace(q.Get("room_type")) == "" {
			items, err = h.Q.ByRoomType(ctx, "")
		} else if rt, err = domain.ParseRoomType(q.Get("room_type")); err == nil {
			items, err = h.Q.ByRoomType(ctx, rt)
		}
	case q.Has("check_in") || q.Has("check_out"):
		in, out, derr := stayParams(r)
		if err = derr; err == nil {
			items, err = h.Q.ByDateRange(ctx, in, out)
		}
	default:
		items, err = h.Q.List(ctx)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, listResponse{Items: toResponses(items), Count: len(items)})
}

func (h *Handlers) transition(op func(context.Context, string) (domain.Reservation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := op(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(res))
	}
}

func (h *Handlers) updateDates(w http.ResponseWriter, r *http.Request) {
	var req updateDatesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := optionalDate(req.CheckIn)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := optionalDate(req.CheckOut)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Cmd.UpdateDates(r.Context(), chi.URLParam(r, "id"), in, out)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(res))
}

func (h *Handlers) deleteReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := h.Cmd.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !removed {
		writeProblem(w, http.StatusNotFound, "Not Found", "reservation "+id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) availability(w http.ResponseWriter, r *http.Request) {
	in, out, err := stayParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	if raw := r.URL.Query().Get("room_type"); raw != "" {
		rt, err := domain.ParseRoomType(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		n, err := h.Q.AvailableRoomCount(ctx, rt, in, out)
		if err != nil {
			writeError(w, err)
			return
		}
		capacity, _ := rt.Capacity()
		writeJSON(w, http.StatusOK, roomAvailabilityResponse{
			RoomType: string(rt), CheckIn: r.URL.Query().Get("check_in"), CheckOut: r.URL.Query().Get("check_out"),
			Available: n, Capacity: capacity, IsAvailable: n > 0,
		})
		return
	}

	rep, err := h.Q.AvailabilityReport(ctx, in, out)
	if err != nil {
		writeError(w, err)
		return
	}
	if wantsText(r) {
		writeText(w, rep.String())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	in, out, err := stayParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rt := domain.RoomType(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("room_type"))))
	b, err := h.Q.PriceQuote(r.Context(), rt, in, out)
	if err != nil {
		writeError(w, err)
		return
	}
	if wantsText(r) {
		writeText(w, b.String())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Q.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if wantsText(r) {
		writeText(w, sum.String())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func stayParams(r *http.Request) (in, out time.Time, err error) {
	q := r.URL.Query()
	if in, err = optionalDate(q.Get("check_in")); err != nil {
		return
	}
	out, err = optionalDate(q.Get("check_out"))
	return
}
