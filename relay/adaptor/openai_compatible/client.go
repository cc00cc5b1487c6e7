package openai_compatible

import (
	"net/http"
	"net/url"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"

	"github.com/songquanpeng/model-compare/common/logger"
)

const userAgent = "model-compare/1.0"

// Client issues requests against OpenAI compatible providers.
type Client struct {
	httpClient *http.Client
	logger     glog.Logger
}

// NewClient wraps httpClient. A nil httpClient uses a client without an
// overall timeout, since streams may legitimately run for minutes.
func NewClient(httpClient *http.Client, lg glog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if lg == nil {
		lg = logger.Logger
	}
	return &Client{httpClient: httpClient, logger: lg}
}

// NewHTTPClient builds the outbound client, optionally routed through proxyURL.
func NewHTTPClient(proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, errors.Wrapf(err, "parse proxy url %q", proxyURL)
		}
		transport.Proxy = http.ProxyURL(parsed)
	}
	return &http.Client{Transport: transport}, nil
}

func setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
}
