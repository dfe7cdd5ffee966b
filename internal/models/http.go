// Package models defines the request and response data structures used
// for communication between clients and the link shortener service.
package models

import "time"

// CreateRequest is a request to shorten a URL.
type CreateRequest struct {
	// URL is the target the short link redirects to.
	URL string `json:"url"`

	// Code is an optional custom short code, 6-8 alphanumeric characters.
	Code string `json:"code,omitempty"`
}

// CreateResponse describes a freshly created short link.
type CreateResponse struct {
	Code string `json:"code"`
	URL  string `json:"url"`

	// ShortURL is the full public short link, base URL plus code.
	ShortURL string `json:"shortUrl"`
}

// ErrorResponse carries a human-readable failure reason.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Uptime is process uptime in several units.
type Uptime struct {
	Seconds float64 `json:"seconds"`
	Minutes string  `json:"minutes"`
	Hours   string  `json:"hours"`
}

// Memory reports process memory as seen by the Go runtime, in bytes.
type Memory struct {
	Alloc uint64 `json:"alloc"`
	Sys   uint64 `json:"sys"`
}

// System describes the host the service runs on.
type System struct {
	Platform     string `json:"platform"`
	Architecture string `json:"architecture"`
	CPUCores     int    `json:"cpu_cores"`
	Goroutines   int    `json:"goroutines"`
	Memory       Memory `json:"memory"`
	GoVersion    string `json:"go_version"`
}

// Health is the body of the health check endpoint.
type Health struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    Uptime    `json:"uptime"`
	System    System    `json:"system"`
	Timestamp time.Time `json:"timestamp"`
}
