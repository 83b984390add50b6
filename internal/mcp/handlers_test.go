// ABOUTME: Tests for the MCP tool handlers over in-memory storage
// ABOUTME: Tool failures must surface as error results, never as Go errors
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/carrierfit/internal/app"
	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/models"
	"github.com/harper/carrierfit/internal/storage/sqlite"
)

// tobaccoEmbedder puts any text mentioning tobacco on one axis and everything else on another
type tobaccoEmbedder struct{}

func (tobaccoEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.Contains(strings.ToLower(text), "tobacco") {
		return []float64{1, 0}, nil
	}
	return []float64{0, 1}, nil
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	require.NoError(t, err)
	cfg := &config.Config{
		VectorBackend: config.BackendSQLite,
		Scoring:       config.DefaultScoring(),
		Retrieval:     config.DefaultRetrieval(),
		Chunking:      config.DefaultChunking(),
	}
	a := app.New(cfg, logging.Discard(), store, store.Vectors(), tobaccoEmbedder{}, nil)
	t.Cleanup(func() { _ = a.Close() })
	return NewHandlers(a)
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func registerAcme(t *testing.T, h *Handlers) {
	t.Helper()
	result, err := h.RegisterCarrier(context.Background(), callRequest("register_carrier", map[string]interface{}{
		"id":              "acme",
		"name":            "Acme Life",
		"preference_rank": float64(1),
		"states":          []interface{}{"tx", "ok"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
}

func TestRegisterAndListCarriers(t *testing.T) {
	h := newTestHandlers(t)
	registerAcme(t, h)

	result, err := h.ListCarriers(context.Background(), callRequest("list_carriers", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp struct {
		Carriers []models.Carrier `json:"carriers"`
		Count    int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Acme Life", resp.Carriers[0].Name)
	assert.Equal(t, []string{"TX", "OK"}, resp.Carriers[0].States)
}

func TestRegisterCarrierRequiresName(t *testing.T) {
	h := newTestHandlers(t)
	result, err := h.RegisterCarrier(context.Background(), callRequest("register_carrier", map[string]interface{}{
		"id": "acme",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestIngestDocument(t *testing.T) {
	h := newTestHandlers(t)
	registerAcme(t, h)
	ctx := context.Background()

	args := map[string]interface{}{
		"carrier_id":     "acme",
		"title":          "Field Guide",
		"effective_date": "2025-01-01",
		"text":           "## Tobacco\nNo tobacco use in 12 months qualifies for non-tobacco rates.\n",
	}

	result, err := h.IngestDocument(ctx, callRequest("ingest_document", args))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var receipt models.IngestReceipt
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &receipt))
	assert.Equal(t, 1, receipt.Version)
	assert.Equal(t, 1, receipt.Chunks)
	assert.Equal(t, 1, receipt.Indexed)
}

func TestIngestDocumentErrors(t *testing.T) {
	h := newTestHandlers(t)
	registerAcme(t, h)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing text", map[string]interface{}{
			"carrier_id": "acme", "title": "Guide", "effective_date": "2025-01-01",
		}},
		{"bad date", map[string]interface{}{
			"carrier_id": "acme", "title": "Guide", "effective_date": "01/01/2025", "text": "body",
		}},
		{"unknown carrier", map[string]interface{}{
			"carrier_id": "nobody", "title": "Guide", "effective_date": "2025-01-01", "text": "body",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.IngestDocument(context.Background(), callRequest("ingest_document", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestEvaluateProfileAndCache(t *testing.T) {
	h := newTestHandlers(t)
	registerAcme(t, h)
	ctx := context.Background()

	_, err := h.IngestDocument(ctx, callRequest("ingest_document", map[string]interface{}{
		"carrier_id":     "acme",
		"title":          "Field Guide",
		"effective_date": "2025-01-01",
		"text":           "## Tobacco\nNo tobacco use in 12 months qualifies for non-tobacco rates.\n",
	}))
	require.NoError(t, err)

	result, err := h.EvaluateProfile(ctx, callRequest("evaluate_profile", map[string]interface{}{
		"profile": map[string]interface{}{
			"age":             float64(45),
			"sex":             "male",
			"height_inches":   float64(70),
			"weight_pounds":   float64(180),
			"coverage_amount": float64(500000),
			"state":           "TX",
		},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var resp struct {
		Fingerprint     string                         `json:"fingerprint"`
		Recommendations []models.CarrierRecommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	require.Len(t, resp.Recommendations, 1)
	rec := resp.Recommendations[0]
	assert.Equal(t, "acme", rec.CarrierID)
	assert.Equal(t, 95, rec.FitScore)
	assert.Equal(t, models.ConfidenceHigh, rec.Confidence)
	assert.NotEmpty(t, rec.Citations)
	require.NotEmpty(t, resp.Fingerprint)

	cached, err := h.GetCachedEvaluation(ctx, callRequest("get_cached_evaluation", map[string]interface{}{
		"fingerprint": resp.Fingerprint,
	}))
	require.NoError(t, err)
	require.False(t, cached.IsError, resultText(t, cached))

	var eval models.Evaluation
	require.NoError(t, json.Unmarshal([]byte(resultText(t, cached)), &eval))
	assert.Equal(t, resp.Fingerprint, eval.Fingerprint)
	require.Len(t, eval.Recommendations, 1)
	assert.Equal(t, 95, eval.Recommendations[0].FitScore)
}

func TestEvaluateProfileErrors(t *testing.T) {
	h := newTestHandlers(t)
	registerAcme(t, h)

	valid := map[string]interface{}{
		"age": float64(45), "height_inches": float64(70),
		"weight_pounds": float64(180), "coverage_amount": float64(500000),
	}

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing profile", map[string]interface{}{}},
		{"profile not an object", map[string]interface{}{"profile": "45 year old male"}},
		{"unknown field", map[string]interface{}{"profile": map[string]interface{}{"age": float64(45), "smoker": true}}},
		{"invalid age", map[string]interface{}{"profile": map[string]interface{}{
			"age": float64(-1), "height_inches": float64(70), "weight_pounds": float64(180), "coverage_amount": float64(500000),
		}}},
		{"unknown carrier", map[string]interface{}{"profile": valid, "carriers": []interface{}{"nobody"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.EvaluateProfile(context.Background(), callRequest("evaluate_profile", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestGetCachedEvaluationNotFound(t *testing.T) {
	h := newTestHandlers(t)
	result, err := h.GetCachedEvaluation(context.Background(), callRequest("get_cached_evaluation", map[string]interface{}{
		"fingerprint": "0000000000000000",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "no cached evaluation")
}

func TestNewServerRegistersTools(t *testing.T) {
	h := newTestHandlers(t)
	server := NewServer(h.app, "test")

	resp := server.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	names := make([]string, 0, len(decoded.Result.Tools))
	for _, tool := range decoded.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"ingest_document", "evaluate_profile", "list_carriers",
		"register_carrier", "get_cached_evaluation",
	}, names)
}
