// JSON-RPC 2.0 and tool-calling protocol types for the stdio server
package server

import "encoding/json"

// protocolVersion is the tool-calling protocol revision reported during
// initialization.
const protocolVersion = "2025-03-26"

const (
	serverName    = "sopmcp"
	serverVersion = "1.0.0"
)

// JSON-RPC error codes used on this wire. Parse failures use the standard
// -32700; every other failure (unknown method, unknown tool, handler
// error) is reported as a server error.
const (
	codeParseError  = -32700
	codeServerError = -32000
)

// request is a JSON-RPC 2.0 request. The ID is kept as raw JSON so it can
// be echoed back verbatim, whatever its type.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// response is a JSON-RPC 2.0 response. Exactly one of Result or Error is
// set. The ID field is always emitted, as null when the request had none.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a JSON-RPC 2.0 error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// notification is a one-way JSON-RPC message carrying no id.
type notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// initializeResult is the server's initialize response.
type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      serverInfo         `json:"serverInfo"`
	Capabilities    serverCapabilities `json:"capabilities"`
}

// serverInfo identifies this server to the client.
type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// serverCapabilities declares what the server supports. The empty tools
// object signals plain tool support without list-change notifications.
type serverCapabilities struct {
	Tools struct{} `json:"tools"`
}

// toolDescription describes one tool for the tools/list response.
type toolDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

// toolsListResult is the result for tools/list.
type toolsListResult struct {
	Tools []toolDescription `json:"tools"`
}

// toolsCallParams is the client's tools/call request parameters.
type toolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// toolResult is the tool-call envelope: the payload travels as a text
// content block holding 2-space-indented JSON.
type toolResult struct {
	Content []contentBlock `json:"content"`
}

// contentBlock is one content entry within a tool result.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// --- tool argument and payload types ---

// defaultK is the documented default for the optional k argument of the
// search tools, applied when k is omitted or non-positive.
const defaultK = 5

// searchArgs carries the arguments of sop.search and web.search.
type searchArgs struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// readArgs carries the arguments of sop.read.
type readArgs struct {
	SectionID string `json:"section_id"`
}

// citeArgs carries the arguments of cite.validate.
type citeArgs struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
}

// readPayload is the sop.read result for a section that exists. Fields
// are carried verbatim from the graph node, empty when absent upstream.
type readPayload struct {
	SectionID string `json:"section_id"`
	Text      string `json:"text"`
	Title     string `json:"title"`
	SOP       string `json:"sop"`
	Section   string `json:"section"`
}
