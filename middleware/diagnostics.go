package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/hardening"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/masking"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/net/resp"
)

// Diagnostics serves the guard status plus an operator-supplied snapshot
// with every credential field masked. snapshot may be nil.
func Diagnostics(o *hardening.Orchestrator, snapshot func() any) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"hardening": o.Status()}
		if snapshot != nil {
			body["config"] = masking.Sensitive(snapshot())
		}
		resp.Success(c.Writer, body)
	}
}
