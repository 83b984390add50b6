// ABOUTME: MCP tool definitions and registration for the carrier-fit server
// ABOUTME: Defines JSON schemas for the ingest, evaluate and carrier roster tools
package mcp

import (
	"github.com/harper/carrierfit/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// profileSchema describes the client profile object
var profileSchema = map[string]interface{}{
	"type":        "object",
	"description": "Client profile for one applicant",
	"properties": map[string]interface{}{
		"age":           map[string]interface{}{"type": "number"},
		"sex":           map[string]interface{}{"type": "string"},
		"height_inches": map[string]interface{}{"type": "number"},
		"weight_pounds": map[string]interface{}{"type": "number"},
		"tobacco": map[string]interface{}{
			"type":        "object",
			"description": "{status: never|former|current, type, years_since_quit}",
		},
		"cannabis": map[string]interface{}{
			"type":        "object",
			"description": "{status: never|former|occasional|regular, type}",
		},
		"conditions": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "object"},
			"description": "[{name, severity: mild|moderate|severe, years_since_diagnosis, treatment}]",
		},
		"risk_activities": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"dui_history":     map[string]interface{}{"type": "boolean"},
		"coverage_amount": map[string]interface{}{"type": "number"},
		"product_type": map[string]interface{}{
			"type":        "string",
			"description": "term, whole_life, universal_life or final_expense (default: term)",
		},
		"state": map[string]interface{}{"type": "string"},
	},
	"required": []string{"age", "height_inches", "weight_pounds", "coverage_amount"},
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, a *app.App) *Handlers {
	handlers := NewHandlers(a)

	// 1. ingest_document - Store a carrier guideline document
	server.AddTool(mcp.Tool{
		Name:        "ingest_document",
		Description: "Ingest extracted text of a carrier underwriting guideline. Re-ingesting identical content is a no-op; changed content becomes a new version.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"carrier_id": map[string]interface{}{
					"type":        "string",
					"description": "Registered carrier ID",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Document title; versions are tracked per carrier and title",
				},
				"effective_date": map[string]interface{}{
					"type":        "string",
					"description": "Guideline effective date (YYYY-MM-DD)",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Plain text of the guideline",
				},
				"source_location": map[string]interface{}{
					"type":        "string",
					"description": "Optional path or URL of the original file",
				},
			},
			Required: []string{"carrier_id", "title", "effective_date", "text"},
		},
	}, handlers.IngestDocument)

	// 2. evaluate_profile - Rank carriers for a client
	server.AddTool(mcp.Tool{
		Name:        "evaluate_profile",
		Description: "Rank carriers for a client profile with fit scores, confidence, reasons, advisories and guideline citations. Informational only, not an underwriting decision.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"profile": profileSchema,
				"carriers": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Carrier IDs to consider (default: all registered carriers)",
				},
				"top_n": map[string]interface{}{
					"type":        "number",
					"description": "Maximum recommendations to return (default: all)",
				},
			},
			Required: []string{"profile"},
		},
	}, handlers.EvaluateProfile)

	// 3. list_carriers - List registered carriers
	server.AddTool(mcp.Tool{
		Name:        "list_carriers",
		Description: "List registered carriers in preference order.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListCarriers)

	// 4. register_carrier - Add or update a carrier
	server.AddTool(mcp.Tool{
		Name:        "register_carrier",
		Description: "Register a carrier or update its name, preference rank and licensed states.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Stable carrier ID",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Display name",
				},
				"preference_rank": map[string]interface{}{
					"type":        "number",
					"description": "Lower ranks win ties (default: 0)",
				},
				"states": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Two-letter state codes; empty means all states",
				},
			},
			Required: []string{"id", "name"},
		},
	}, handlers.RegisterCarrier)

	// 5. get_cached_evaluation - Fetch a past evaluation
	server.AddTool(mcp.Tool{
		Name:        "get_cached_evaluation",
		Description: "Fetch the most recent cached evaluation by fingerprint.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"fingerprint": map[string]interface{}{
					"type":        "string",
					"description": "Fingerprint returned by evaluate_profile",
				},
			},
			Required: []string{"fingerprint"},
		},
	}, handlers.GetCachedEvaluation)

	return handlers
}
