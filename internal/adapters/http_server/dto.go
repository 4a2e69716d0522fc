package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
)

// validate checks request shape only. Business rules, and their exact
// messages, stay in the app layer.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	mustRegister(validate, "isodate", isoDate)
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// isoDate accepts an empty string; presence is checked by the app layer.
func isoDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := dates.Parse(s)
	return err == nil
}

type createReservationRequest struct {
	GuestName  string `json:"guest_name" validate:"max=200"`
	GuestEmail string `json:"guest_email" validate:"max=254"`
	CheckIn    string `json:"check_in" validate:"isodate"`
	CheckOut   string `json:"check_out" validate:"isodate"`
	RoomType   string `json:"room_type" validate:"max=32"`
}

type updateDatesRequest struct {
	CheckIn  string `json:"check_in" validate:"isodate"`
	CheckOut string `json:"check_out" validate:"isodate"`
}

type cityRequest struct {
	Neighbors map[string]float64 `json:"neighbors" validate:"dive,keys,required,endkeys,gte=0"`
}

type reservationResponse struct {
	ID         string `json:"id"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Nights     int    `json:"nights"`
	RoomType   string `json:"room_type"`
	TotalPrice string `json:"total_price"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

func toResponse(r domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:         r.ID,
		GuestName:  r.GuestName,
		GuestEmail: r.GuestEmail,
		CheckIn:    dates.Format(r.CheckIn),
		CheckOut:   dates.Format(r.CheckOut),
		Nights:     r.Nights(),
		RoomType:   string(r.RoomType),
		TotalPrice: r.TotalPrice.StringFixed(2),
		Status:     string(r.Status),
		CreatedAt:  dates.Format(r.CreatedAt),
	}
}

func toResponses(rs []domain.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toResponse(r))
	}
	return out
}

type listResponse struct {
	Items []reservationResponse `json:"items"`
	Count int                   `json:"count"`
}

type roomAvailabilityResponse struct {
	RoomType    string `json:"room_type"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Available   int    `json:"available"`
	Capacity    int    `json:"capacity"`
	IsAvailable bool   `json:"is_available"`
}

var errBadRequest = errors.New("bad request")

// decodeBody reads one JSON object and runs tag validation on it.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, describe(err))
	}
	return nil
}

func describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// optionalDate treats "" as a missing date so the app layer reports it.
func optionalDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return dates.Parse(s)
}
