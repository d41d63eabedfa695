package ecode

// Business codes carried in failure responses alongside the HTTP status.
const (
	OK             = 0
	ServerErr      = -500
	RequestErr     = -400
	TooManyRequest = -429
	SenderBlocked  = -430
)

var messages = map[int]string{
	OK:             "ok",
	ServerErr:      "server error",
	RequestErr:     "invalid request",
	TooManyRequest: "too many requests",
	SenderBlocked:  "sender not authorized",
}

// Text returns the human-readable message for a business code.
func Text(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[ServerErr]
}
