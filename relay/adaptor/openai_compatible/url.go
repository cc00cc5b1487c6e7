package openai_compatible

import (
	"regexp"
	"strings"
)

var versionSuffix = regexp.MustCompile(`/v\d+$`)

// BuildAPIURL joins a provider endpoint and an API path.
// A single trailing slash is dropped from the endpoint. When the endpoint
// already ends in a version segment such as /v4 the path is appended as is,
// otherwise /v1 is inserted. The endpoint is not validated.
func BuildAPIURL(endpoint, apiPath string) string {
	base := strings.TrimSpace(endpoint)
	base = strings.TrimSuffix(base, "/")

	if versionSuffix.MatchString(base) {
		return base + apiPath
	}
	return base + "/v1" + apiPath
}
