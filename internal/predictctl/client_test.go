package predictctl

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"predictd/pkg/types"
)

func TestClientPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/housing/predict" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var fields map[string]float64
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if fields["median_income"] != 5.0 {
			t.Fatalf("fields = %v", fields)
		}
		json.NewEncoder(w).Encode(types.HousingResponse{PredictedPrice: 3.85, InputValidationPassed: true})
	}))
	defer srv.Close()

	raw, err := NewClient(srv.URL).Predict("housing", map[string]float64{"median_income": 5.0})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	var resp types.HousingResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.PredictedPrice != 3.85 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestClientErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(types.ErrorResponse{
			Error:   "ValidationError",
			Message: "Input validation failed",
			Details: []types.ErrorDetail{{Field: "median_income", Constraint: "must be greater than 0"}},
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Predict("housing", map[string]float64{})
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "ValidationError") || !strings.Contains(msg, "median_income") || !strings.Contains(msg, "422") {
		t.Fatalf("error = %q", msg)
	}
}

func TestClientRetrainAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/retrain":
			var req types.RetrainRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !req.Force || req.ModelType != "iris" {
				t.Fatalf("request = %+v", req)
			}
			json.NewEncoder(w).Encode(types.RetrainResponse{Status: "completed"})
		case "/retrain/status":
			json.NewEncoder(w).Encode(types.RetrainStatusResponse{States: map[string]string{"iris": "idle"}})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Retrain(types.RetrainRequest{ModelType: "iris", Force: true})
	if err != nil {
		t.Fatalf("retrain: %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("resp = %+v", resp)
	}
	status, err := c.RetrainStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.States["iris"] != "idle" {
		t.Fatalf("status = %+v", status)
	}
}

func TestBuildRootCmdWiring(t *testing.T) {
	root := BuildRootCmd()
	for _, name := range []string{"predict", "retrain", "status", "health", "model-info", "app-metrics"} {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing %s subcommand", name)
		}
	}
}
