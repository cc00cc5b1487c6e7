package helper

import (
	"fmt"
	"time"
)

// RequestIdKey is the header and gin context key carrying the request id.
const RequestIdKey = "X-Model-Compare-Request-Id"

// GetTimestamp get current timestamp in seconds
func GetTimestamp() int64 {
	return time.Now().Unix()
}

// GetTimeString returns a sortable timestamp string with nanosecond suffix.
func GetTimeString() string {
	now := time.Now()
	return fmt.Sprintf("%s%d", now.Format("20060102150405"), now.UnixNano()%1e9)
}

// GenRequestID builds a request id from the current time.
func GenRequestID() string {
	return GetTimeString()
}

