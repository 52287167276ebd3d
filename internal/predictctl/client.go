// Package predictctl implements the operator CLI for a running predictd
// instance. Every command is a thin HTTP call against the daemon's API.
package predictctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"predictd/pkg/types"
)

// Client talks to one predictd instance.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a Client with a sane default timeout. Synchronous
// retraining can run for a while, so the timeout is generous.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Minute},
	}
}

func (c *Client) get(path string, out any) error {
	resp, err := c.HTTP.Get(c.BaseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *Client) post(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Post(c.BaseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr types.ErrorResponse
		if jerr := json.Unmarshal(raw, &apiErr); jerr == nil && apiErr.Error != "" {
			msg := apiErr.Error
			if apiErr.Message != "" {
				msg += ": " + apiErr.Message
			}
			for _, d := range apiErr.Details {
				msg += fmt.Sprintf("\n  %s: %s", d.Field, d.Constraint)
			}
			return fmt.Errorf("%s (HTTP %d)", msg, resp.StatusCode)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// Predict submits one prediction request for a model type.
func (c *Client) Predict(modelType string, fields map[string]float64) (json.RawMessage, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Post(c.BaseURL+"/"+modelType+"/predict", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var raw json.RawMessage
	if err := decodeResponse(resp, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Retrain triggers retraining; the response shape depends on background.
func (c *Client) Retrain(req types.RetrainRequest) (types.RetrainResponse, error) {
	var resp types.RetrainResponse
	err := c.post("/retrain", req, &resp)
	return resp, err
}

// RetrainStatus fetches the orchestrator's current state.
func (c *Client) RetrainStatus() (types.RetrainStatusResponse, error) {
	var resp types.RetrainStatusResponse
	err := c.get("/retrain/status", &resp)
	return resp, err
}

// Health fetches the service health summary.
func (c *Client) Health() (types.HealthResponse, error) {
	var resp types.HealthResponse
	err := c.get("/health", &resp)
	return resp, err
}

// ModelInfo describes the active model for a model type.
func (c *Client) ModelInfo(modelType string) (types.ModelInfoResponse, error) {
	var resp types.ModelInfoResponse
	err := c.get("/"+modelType+"/model-info", &resp)
	return resp, err
}

// AppMetrics fetches prediction volume counters.
func (c *Client) AppMetrics() (types.AppMetricsResponse, error) {
	var resp types.AppMetricsResponse
	err := c.get("/app-metrics", &resp)
	return resp, err
}

// readFields loads a JSON object of numeric fields from a file, or stdin
// when path is "-".
func readFields(path string) (map[string]float64, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var fields map[string]float64
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("input must be a JSON object of numeric fields: %w", err)
	}
	return fields, nil
}

// printJSON pretty-prints a value to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
