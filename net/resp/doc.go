// Package resp provides standardized HTTP response helpers for building
// consistent JSON responses.
//
// # Success Responses
//
//	// Simple success with data
//	resp.Success(w, statusPayload)
//
//	// Success with custom status code
//	resp.WithStatusCode(w, http.StatusCreated, newResource)
//
// # Error Responses
//
//	resp.Fail(w, &resp.Exception{
//	    Status:  http.StatusTooManyRequests,
//	    Code:    ecode.TooManyRequest,
//	    Message: "too many requests",
//	})
//
// # Error Codes
//
// Business error codes are defined in the ecode package and provide
// standardized error classification across the application.
package resp
