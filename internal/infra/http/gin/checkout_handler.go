package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"drively/internal/app/commands"
	"drively/internal/app/dto"
	CheckoutApp "drively/internal/app/handlers/checkout"
	domainbooking "drively/internal/domain/booking"
	domaincars "drively/internal/domain/cars"
	domaincheckout "drively/internal/domain/checkout"
)

// CheckoutHandler exposes the checkout state machine over HTTP. All stage
// transitions go through the command bus; Get reads the session store
// directly.
type CheckoutHandler struct {
	Commands commands.Bus
	Sessions domaincheckout.Repository
}

type startCheckoutRequest struct {
	CarID string `json:"car_id"`
}

func (h CheckoutHandler) Start(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req startCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.StartCheckoutCommand{
		SessionID: uuid.NewString(),
		CarID:     req.CarID,
		GuestID:   user.ID,
	}
	result, err := commands.Dispatch[CheckoutApp.StartCheckoutCommand, *CheckoutApp.StartCheckoutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h CheckoutHandler) Get(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	sess, err := h.Sessions.ByID(c.Request.Context(), domaincheckout.SessionID(c.Param("id")))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	if sess.GuestID != user.ID {
		respondCheckoutError(c, domaincheckout.ErrNotSessionOwner)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": dto.MapCheckoutSession(sess)})
}

type setDatesRequest struct {
	Pickup time.Time `json:"pickup"`
	Return time.Time `json:"return"`
}

func (h CheckoutHandler) SetDates(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req setDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.SetDatesCommand{
		SessionID: c.Param("id"),
		GuestID:   user.ID,
		Pickup:    req.Pickup,
		Return:    req.Return,
	}
	result, err := commands.Dispatch[CheckoutApp.SetDatesCommand, *CheckoutApp.DraftResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type setAddOnRequest struct {
	AddOn   string `json:"add_on"`
	Enabled bool   `json:"enabled"`
}

func (h CheckoutHandler) SetAddOns(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req setAddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.SetAddOnCommand{
		SessionID: c.Param("id"),
		GuestID:   user.ID,
		AddOn:     req.AddOn,
		Enabled:   req.Enabled,
	}
	result, err := commands.Dispatch[CheckoutApp.SetAddOnCommand, *CheckoutApp.DraftResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type setLocationsRequest struct {
	Pickup  string `json:"pickup"`
	Dropoff string `json:"dropoff"`
}

func (h CheckoutHandler) SetLocations(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req setLocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.SetLocationsCommand{
		SessionID: c.Param("id"),
		GuestID:   user.ID,
		Pickup:    req.Pickup,
		Dropoff:   req.Dropoff,
	}
	result, err := commands.Dispatch[CheckoutApp.SetLocationsCommand, *CheckoutApp.DraftResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type setRequestsRequest struct {
	Text string `json:"text"`
}

func (h CheckoutHandler) SetRequests(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req setRequestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.SetSpecialRequestsCommand{
		SessionID: c.Param("id"),
		GuestID:   user.ID,
		Text:      req.Text,
	}
	result, err := commands.Dispatch[CheckoutApp.SetSpecialRequestsCommand, *CheckoutApp.DraftResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CheckoutHandler) ContinueToPayment(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := CheckoutApp.ContinueToPaymentCommand{
		SessionID:       c.Param("id"),
		GuestID:         user.ID,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[CheckoutApp.ContinueToPaymentCommand, *CheckoutApp.ContinueToPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CheckoutHandler) Review(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := CheckoutApp.ReviewCheckoutCommand{
		SessionID: c.Param("id"),
		GuestID:   user.ID,
	}
	result, err := commands.Dispatch[CheckoutApp.ReviewCheckoutCommand, *CheckoutApp.ReviewCheckoutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CheckoutHandler) Confirm(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := CheckoutApp.ConfirmBookingCommand{
		SessionID:       c.Param("id"),
		GuestID:         user.ID,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[CheckoutApp.ConfirmBookingCommand, *CheckoutApp.ConfirmBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h CheckoutHandler) Cancel(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := CheckoutApp.CancelCheckoutCommand{
		SessionID: c.Param("id"),
		GuestID:   user.ID,
	}
	result, err := commands.Dispatch[CheckoutApp.CancelCheckoutCommand, *CheckoutApp.CancelCheckoutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondCheckoutError maps domain errors to HTTP statuses. Every payload
// carries the user-facing message so clients can render it as-is.
func respondCheckoutError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domaincheckout.ErrSessionNotFound),
		errors.Is(err, domaincars.ErrCarNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domaincheckout.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domaincheckout.ErrNotSessionOwner):
		status = http.StatusForbidden
	case errors.Is(err, domaincheckout.ErrCancellationBlocked),
		errors.Is(err, domaincheckout.ErrAdvanceInFlight),
		errors.Is(err, domaincheckout.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, domaincheckout.ErrPaymentClientNotReady):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domaincheckout.ErrMissingDates),
		errors.Is(err, domaincheckout.ErrStartInPast),
		errors.Is(err, domaincheckout.ErrEndNotAfterStart),
		errors.Is(err, domaincheckout.ErrUnknownAddOn),
		errors.Is(err, domaincars.ErrCarUnavailable):
		status = http.StatusUnprocessableEntity
	default:
		var handoff *domaincheckout.HandoffError
		if errors.As(err, &handoff) {
			status = http.StatusBadGateway
		}
	}
	c.JSON(status, gin.H{"error": domaincheckout.UserMessage(err), "detail": err.Error()})
}

var _ CheckoutHTTP = CheckoutHandler{}
