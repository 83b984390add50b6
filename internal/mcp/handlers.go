// ABOUTME: MCP tool handler implementations for the carrier-fit server
// ABOUTME: Handlers report failures as tool errors, never as Go errors
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/carrierfit/internal/app"
	"github.com/harper/carrierfit/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	app *app.App
}

// NewHandlers creates handlers backed by a
func NewHandlers(a *app.App) *Handlers {
	return &Handlers{app: a}
}

// IngestDocument handles the ingest_document tool
func (h *Handlers) IngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	carrierID, err := request.RequireString("carrier_id")
	if err != nil {
		return mcp.NewToolResultError("carrier_id argument is required and must be a string"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title argument is required and must be a string"), nil
	}
	dateStr, err := request.RequireString("effective_date")
	if err != nil {
		return mcp.NewToolResultError("effective_date argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	effective, err := models.ParseDate(dateStr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	receipt, err := h.app.Ingest(ctx, models.IngestRequest{
		Text:           text,
		CarrierID:      carrierID,
		Title:          title,
		EffectiveDate:  effective,
		SourceLocation: request.GetString("source_location", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingest failed: %v", err)), nil
	}

	return jsonResult(receipt)
}

// EvaluateProfile handles the evaluate_profile tool
func (h *Handlers) EvaluateProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.GetArguments()["profile"]
	if !ok || raw == nil {
		return mcp.NewToolResultError("profile argument is required and must be an object"), nil
	}

	profile, err := decodeProfile(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	carrierIDs := request.GetStringSlice("carriers", nil)
	topN := request.GetInt("top_n", 0)

	recs, err := h.app.Evaluate(ctx, profile, carrierIDs, topN)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	fingerprint, err := h.app.Fingerprint(ctx, profile, carrierIDs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"fingerprint":     fingerprint,
		"recommendations": recs,
	})
}

// ListCarriers handles the list_carriers tool
func (h *Handlers) ListCarriers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	carriers, err := h.app.Store.ListCarriers(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list carriers: %v", err)), nil
	}
	if carriers == nil {
		carriers = []models.Carrier{}
	}

	return jsonResult(map[string]interface{}{
		"carriers": carriers,
		"count":    len(carriers),
	})
}

// RegisterCarrier handles the register_carrier tool
func (h *Handlers) RegisterCarrier(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required and must be a string"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required and must be a string"), nil
	}

	carrier := &models.Carrier{
		ID:             id,
		Name:           name,
		PreferenceRank: request.GetInt("preference_rank", 0),
		States:         request.GetStringSlice("states", nil),
	}
	if err := h.app.Store.SaveCarrier(ctx, carrier); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to register carrier: %v", err)), nil
	}

	saved, err := h.app.Store.GetCarrier(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load carrier: %v", err)), nil
	}
	return jsonResult(saved)
}

// GetCachedEvaluation handles the get_cached_evaluation tool
func (h *Handlers) GetCachedEvaluation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fingerprint, err := request.RequireString("fingerprint")
	if err != nil {
		return mcp.NewToolResultError("fingerprint argument is required and must be a string"), nil
	}

	eval, err := h.app.CachedEvaluation(ctx, fingerprint)
	if errors.Is(err, models.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no cached evaluation for %s", fingerprint)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load evaluation: %v", err)), nil
	}
	return jsonResult(eval)
}

// decodeProfile converts a loosely typed JSON object into a profile, rejecting unknown fields
func decodeProfile(raw interface{}) (models.ClientProfile, error) {
	var p models.ClientProfile
	data, err := json.Marshal(raw)
	if err != nil {
		return p, fmt.Errorf("profile must be an object: %v", err)
	}
	if err := strictUnmarshal(data, &p); err != nil {
		return p, fmt.Errorf("invalid profile: %v", err)
	}
	return p, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
