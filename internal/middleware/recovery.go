package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"signup-be/internal/render"
)

// Recovery turns a panic anywhere in the chain into a 500 with the standard error body
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		zerolog.Ctx(c.Request.Context()).Error().
			Err(fmt.Errorf("panic: %v", recovered)).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		render.Error(c, http.StatusInternalServerError, render.MsgInternalError)
	})
}
