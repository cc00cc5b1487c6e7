package main

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/songquanpeng/model-compare/common/env"
	"github.com/songquanpeng/model-compare/relay/comparison"
	relaymodel "github.com/songquanpeng/model-compare/relay/model"
)

const defaultUserPrompt = "Explain in two sentences why the sky is blue."

// config captures the harness configuration derived from environment variables.
type config struct {
	Endpoint   string
	APIKey     string
	Models     []string
	Params     relaymodel.RequestParams
	Prompt     comparison.Prompt
	RunTimeout time.Duration
	ProxyURL   string
}

// loadConfig reads COMPARE_* variables.
func loadConfig() (config, error) {
	endpoint := strings.TrimSpace(env.String("COMPARE_ENDPOINT", ""))
	if endpoint == "" {
		return config{}, errors.New("COMPARE_ENDPOINT must be set")
	}

	models := parseModels(env.String("COMPARE_MODELS", ""))
	if len(models) == 0 {
		return config{}, errors.New("COMPARE_MODELS must list at least one model")
	}

	params, err := parseParams(env.String("COMPARE_REQUEST_PARAMS", ""))
	if err != nil {
		return config{}, errors.Wrap(err, "parse COMPARE_REQUEST_PARAMS")
	}

	userPrompt := env.String("COMPARE_USER_PROMPT", "")
	if strings.TrimSpace(userPrompt) == "" {
		userPrompt = defaultUserPrompt
	}

	return config{
		Endpoint: endpoint,
		APIKey:   strings.TrimSpace(env.String("COMPARE_API_KEY", "")),
		Models:   models,
		Params:   params,
		Prompt: comparison.Prompt{
			System: env.String("COMPARE_SYSTEM_PROMPT", ""),
			User:   userPrompt,
		},
		RunTimeout: time.Duration(env.Int("COMPARE_RUN_TIMEOUT", 300)) * time.Second,
		ProxyURL:   strings.TrimSpace(env.String("HTTP_PROXY_URL", "")),
	}, nil
}

// parseModels tokenizes COMPARE_MODELS into model identifiers.
func parseModels(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	normalized := raw
	for _, sep := range []string{";", "\n", "\r"} {
		normalized = strings.ReplaceAll(normalized, sep, ",")
	}

	parts := strings.Split(normalized, ",")
	if len(parts) == 1 {
		parts = strings.Fields(raw)
	}

	var models []string
	for _, part := range parts {
		if candidate := strings.TrimSpace(part); candidate != "" {
			models = append(models, candidate)
		}
	}
	return models
}

// parseParams decodes a JSON object of request parameter overrides.
func parseParams(raw string) (relaymodel.RequestParams, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var params relaymodel.RequestParams
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, errors.Wrap(err, "decode json object")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// targets builds one active slot per model, all sharing one provider.
func (c config) targets() []relaymodel.ActiveSlot {
	provider := relaymodel.Provider{
		Id:            "cli",
		Name:          "cli",
		Endpoint:      c.Endpoint,
		APIKey:        c.APIKey,
		RequestParams: c.Params,
	}

	slots := make([]relaymodel.ActiveSlot, 0, len(c.Models))
	for i, m := range c.Models {
		slots = append(slots, relaymodel.ActiveSlot{
			Slot: relaymodel.ModelSlot{
				Id:         "slot-" + strconv.Itoa(i+1),
				ProviderId: provider.Id,
				ModelId:    m,
			},
			Provider: provider,
		})
	}
	return slots
}
