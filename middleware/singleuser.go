package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/ecode"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/net/resp"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/singleuser"
)

// HeaderSender carries the sender identity on webhook requests.
const HeaderSender = "X-Sender-Id"

// SenderGuard rejects requests whose sender identity does not match the
// configured single user. Enforcement is fail-closed: a missing header or an
// unarmed enforcer both deny.
func SenderGuard(enforcer *singleuser.Enforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enforcer.IsAuthorized(c.GetHeader(HeaderSender)) {
			resp.Fail(c.Writer, &resp.Exception{
				Status:  http.StatusForbidden,
				Code:    ecode.SenderBlocked,
				Message: ecode.Text(ecode.SenderBlocked),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
