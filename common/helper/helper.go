package helper

import "fmt"

// MessageWithRequestId appends the request id so users can quote it in reports.
func MessageWithRequestId(message string, id string) string {
	if id == "" {
		return message
	}
	return fmt.Sprintf("%s (request id: %s)", message, id)
}
