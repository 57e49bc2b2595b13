// Package utils holds small helpers shared across the REST layer.
package utils

// ResponseData is the envelope for non-flat REST responses.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}
