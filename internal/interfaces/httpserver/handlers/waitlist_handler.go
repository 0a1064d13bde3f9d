package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/domain/waitlist"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver/responses"
)

// WaitlistHandler accepts landing page signups.
type WaitlistHandler struct {
	signups *waitlist.Service
	log     zerolog.Logger
}

func NewWaitlistHandler(signups *waitlist.Service, log zerolog.Logger) *WaitlistHandler {
	return &WaitlistHandler{
		signups: signups,
		log:     log.With().Str("component", "waitlist-handler").Logger(),
	}
}

type signupRequest struct {
	Email    string              `json:"email" binding:"required,email"`
	Company  string              `json:"company"`
	Role     string              `json:"role"`
	Source   string              `json:"source"`
	Referrer string              `json:"referrer"`
	UTM      *waitlist.UTMParams `json:"utm"`
}

type signupResponse struct {
	OK     bool   `json:"ok"`
	ID     string `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Subscribe records a signup once per email. Repeats are acknowledged with
// the original entry instead of an error.
func (h *WaitlistHandler) Subscribe(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "A valid email address is required.")
		return
	}

	sub := waitlist.SubscribeRequest{
		Email:    req.Email,
		Company:  req.Company,
		Role:     req.Role,
		Source:   req.Source,
		Referrer: req.Referrer,
	}
	if req.UTM != nil {
		sub.UTM = *req.UTM
	}

	signup, created, err := h.signups.Subscribe(c.Request.Context(), sub)
	if err != nil {
		h.log.Error().Err(err).Msg("signup failed")
		responses.HandleError(c, err, "Could not record the signup.")
		return
	}

	status := "already_subscribed"
	code := http.StatusOK
	if created {
		status = "queued"
		code = http.StatusCreated
	}
	c.JSON(code, signupResponse{OK: true, ID: signup.ID, Email: signup.Email, Status: status})
}
