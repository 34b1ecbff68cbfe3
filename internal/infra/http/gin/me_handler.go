package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"drively/internal/app/dto"
	domainbooking "drively/internal/domain/booking"
	"drively/internal/infra/notify"
)

// MeHandler serves the signed-in guest's bookings and pending notices.
type MeHandler struct {
	Bookings domainbooking.Repository
	Notifier *notify.FeedNotifier
}

type bookingResponse struct {
	ID              string       `json:"id"`
	CarID           string       `json:"car_id"`
	Pickup          time.Time    `json:"pickup"`
	Return          time.Time    `json:"return"`
	PickupLocation  string       `json:"pickup_location,omitempty"`
	DropoffLocation string       `json:"dropoff_location,omitempty"`
	SpecialRequests string       `json:"special_requests,omitempty"`
	Total           dto.MoneyDTO `json:"total"`
	State           string       `json:"state"`
	CreatedAt       time.Time    `json:"created_at"`
}

func (h MeHandler) ListBookings(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	all, err := h.Bookings.ListByGuest(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bookings unavailable"})
		return
	}
	out := make([]bookingResponse, 0, len(all))
	for _, b := range all {
		out = append(out, bookingResponse{
			ID:              string(b.ID),
			CarID:           string(b.CarID),
			Pickup:          b.Range.Pickup,
			Return:          b.Range.Return,
			PickupLocation:  b.PickupLocation,
			DropoffLocation: b.DropoffLocation,
			SpecialRequests: b.SpecialRequests,
			Total:           dto.MapMoney(b.Total),
			State:           string(b.State),
			CreatedAt:       b.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

func (h MeHandler) Notices(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var notices []notify.Notice
	if h.Notifier != nil {
		notices = h.Notifier.Drain(user.ID)
	}
	if notices == nil {
		notices = []notify.Notice{}
	}
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}

var _ MeHTTP = MeHandler{}
