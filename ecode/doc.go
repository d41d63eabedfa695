// Package ecode defines standardized error codes for API responses.
//
// Error codes follow a standardized numbering scheme mirroring HTTP where a
// close equivalent exists:
//   - 0: Success (OK)
//   - -400: Request errors
//   - -429, -430: Guard-layer denials (rate limit, sender)
//   - -500: Server errors
//
// Use Text to resolve a code to its human-readable message:
//
//	msg := ecode.Text(ecode.TooManyRequest) // "too many requests"
package ecode
