package openai_compatible

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/model-compare/relay/model"
)

const maxModelsBodySize = 8 << 20 // 8 MiB

// FetchModels lists the model identifiers exposed by provider.
// A body without a data array yields an empty list rather than an error.
func (c *Client) FetchModels(ctx context.Context, provider model.Provider) ([]string, error) {
	endpoint := BuildAPIURL(provider.Endpoint, "/models")
	lg := c.logger.With(zap.String("provider", provider.Name), zap.String("url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build models request")
	}
	setHeaders(req, provider.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err, "request models")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxModelsBodySize))
		lg.Warn("models request rejected", zap.Int("status", resp.StatusCode))
		return nil, &FetchError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxModelsBodySize))
	if err != nil {
		return nil, classifyTransportError(ctx, err, "read models response")
	}

	var parsed model.ModelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "decode models response")
	}

	ids := parsed.ModelIDs()
	if ids == nil {
		ids = []string{}
	}
	lg.Debug("fetched models", zap.Int("count", len(ids)))
	return ids, nil
}
