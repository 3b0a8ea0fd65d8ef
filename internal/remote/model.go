// Package remote talks to the authoritative task store: a Frappe-style HTTP
// resource collection holding one record per task.
package remote

import (
	"strings"
	"time"
)

// Status values understood by the remote store
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// CreationLayout is the timestamp layout Frappe uses for the creation field
const CreationLayout = "2006-01-02 15:04:05.999999"

// ListFields are the record fields requested on every list call
var ListFields = []string{"name", "description", "status", "creation"}

// Record is one task as stored by the remote service
type Record struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Creation    string `json:"creation,omitempty"`
}

// Done reports whether the record's status marks it complete
func (r Record) Done() bool {
	return IsClosed(r.Status)
}

// CreatedAt parses the creation timestamp. The second result is false when
// the field is missing or in an unknown format.
func (r Record) CreatedAt() (time.Time, bool) {
	return ParseCreation(r.Creation)
}

// IsClosed maps a remote status onto the done flag. Only the exact value
// "Closed" counts; case and whitespace variants are not done.
func IsClosed(status string) bool {
	return status == StatusClosed
}

// StatusFor maps the done flag onto the status sent to the remote
func StatusFor(done bool) string {
	if done {
		return StatusClosed
	}
	return StatusOpen
}

// ParseCreation accepts RFC 3339 and Frappe's own datetime layout
func ParseCreation(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), true
	}
	if t, err := time.ParseInLocation(CreationLayout, value, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// WriteRequest is the body of create and update calls
type WriteRequest struct {
	Description string `json:"description"`
	Status      string `json:"status"`
}

// ListResponse is the envelope returned by a collection GET
type ListResponse struct {
	Data []Record `json:"data"`
}

// RecordResponse is the envelope returned by create and update calls
type RecordResponse struct {
	Data Record `json:"data"`
}
