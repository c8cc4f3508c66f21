package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"signup-be/internal/metrics"
	"signup-be/internal/models"
	"signup-be/internal/render"
	"signup-be/internal/service"
)

// Error messages returned to clients
const (
	MsgMethodNotAllowed = "Method not allowed"
	MsgInvalidEmail     = "Please provide a valid email address"
	MsgBodyTooLarge     = "Request body too large"
)

type SignupController struct {
	signupService service.SignupService
}

func NewSignupController(signupService service.SignupService) *SignupController {
	return &SignupController{
		signupService: signupService,
	}
}

// Signup handles ANY /api/signup and /.netlify/functions/signup.
// Only POST is accepted; every other method gets 405.
func (sc *SignupController) Signup(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		metrics.SignupsTotal.WithLabelValues(metrics.OutcomeMethodNotAllowed).Inc()
		render.Error(c, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Error(c, http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
			return
		}
		sc.internalError(c, err)
		return
	}

	// Anything that is not a JSON object with a string email counts as no email
	var req models.SignupRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("unparsable signup body")
			req = models.SignupRequest{}
		}
	}

	response, err := sc.signupService.Signup(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			metrics.SignupsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
			render.Error(c, http.StatusBadRequest, MsgInvalidEmail)
			return
		}
		sc.internalError(c, err)
		return
	}

	metrics.SignupsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	render.JSON(c, http.StatusOK, response)
}

func (sc *SignupController) internalError(c *gin.Context, err error) {
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("signup error")
	metrics.SignupsTotal.WithLabelValues(metrics.OutcomeError).Inc()
	render.Error(c, http.StatusInternalServerError, render.MsgInternalError)
}
