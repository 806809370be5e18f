// Package common holds the response shape shared by the HTTP and Lambda
// boundaries.
package common

import (
	"encoding/json"
	"net/http"
)

// The invocation contract fixes the user-visible messages; no internal
// detail is ever exposed beyond these.
const (
	MsgSuccess         = "Groups and invite links updated successfully"
	MsgFailure         = "Failed to update groups and invite links"
	MsgMissingAccounts = "Bad Request: Missing accounts"
	MsgUnauthorized    = "Unauthorized: Invalid or missing API key"
	MsgError           = "Error processing request"
)

// MessageResponse is the JSON body of every response
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondMessage sends the fixed-message JSON response
func RespondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(MessageResponse{Message: message})
}

// MessageBody renders the response body for non-HTTP boundaries
func MessageBody(message string) string {
	body, _ := json.Marshal(MessageResponse{Message: message})
	return string(body)
}
