// Static tool catalog advertised through tools/list
package server

// Tool names, also used as metric labels.
const (
	toolSearch       = "sop.search"
	toolRead         = "sop.read"
	toolWebSearch    = "web.search"
	toolCiteValidate = "cite.validate"
)

// toolCatalog is the fixed set of tools this server exposes. The catalog
// never changes at runtime, so it is built once as package data.
var toolCatalog = []toolDescription{
	{
		Name:        toolSearch,
		Description: "Search SOP documents using hybrid BM25 and dense vector search",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query",
				},
				"k": map[string]any{
					"type":        "integer",
					"description": "Number of results to return",
					"default":     defaultK,
				},
			},
			"required": []string{"query"},
		},
	},
	{
		Name:        toolRead,
		Description: "Read a specific SOP section by section_id",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"section_id": map[string]any{
					"type":        "string",
					"description": "Section ID to read",
				},
			},
			"required": []string{"section_id"},
		},
	},
	{
		Name:        toolWebSearch,
		Description: "Search the web for additional information (requires SERPER_API_KEY)",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query",
				},
				"k": map[string]any{
					"type":        "integer",
					"description": "Number of results to return",
					"default":     defaultK,
				},
			},
			"required": []string{"query"},
		},
	},
	{
		Name:        toolCiteValidate,
		Description: "Validate citation coverage in text",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "Text to validate citations for",
				},
				"citations": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "List of citations",
				},
			},
			"required": []string{"text", "citations"},
		},
	},
}
