// Package render writes JSON responses with a bare application/json content type.
package render

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"signup-be/internal/models"
)

const ContentTypeJSON = "application/json"

// MsgInternalError is the body of every 500 response
const MsgInternalError = "Internal server error"

// JSON writes body as JSON with the given status
func JSON(c *gin.Context, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to encode response")
		status = http.StatusInternalServerError
		data = []byte(`{"error":"` + MsgInternalError + `"}`)
	}
	c.Data(status, ContentTypeJSON, data)
}

// Error writes {"error": message} and aborts the handler chain
func Error(c *gin.Context, status int, message string) {
	JSON(c, status, models.ErrorResponse{Error: message})
	c.Abort()
}
