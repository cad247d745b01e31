// Package server implements the JSON-RPC 2.0 tool server on stdio
package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nainya/sopmcp/internal/logger"
	"github.com/nainya/sopmcp/internal/metrics"
	"github.com/nainya/sopmcp/internal/resources"
	"github.com/nainya/sopmcp/pkg/cite"
	"github.com/nainya/sopmcp/pkg/search"
	"github.com/nainya/sopmcp/pkg/websearch"
)

// maxLineBytes bounds a single request line. Requests are small tool
// calls, not bulk uploads, so 1 MiB is generous.
const maxLineBytes = 1 << 20

// Server dispatches JSON-RPC requests to the tool handlers. It processes
// one request at a time in arrival order; responses are written in the
// same order as the requests that produced them.
type Server struct {
	store   *resources.Store
	engine  *search.Engine
	web     *websearch.Client
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewServer wires the dispatcher to its loaded resources and collaborators.
func NewServer(store *resources.Store, web *websearch.Client, log *logger.Logger, m *metrics.Metrics) *Server {
	return &Server{
		store:   store,
		engine:  search.NewEngine(store.Table, store.Lexical, store.Vectors, store.Graph, store.Model),
		web:     web,
		log:     log,
		metrics: m,
	}
}

// Serve runs the request loop on the process's standard streams.
func (s *Server) Serve() error {
	return s.Run(os.Stdin, os.Stdout)
}

// Run reads newline-delimited JSON-RPC requests from input and writes one
// response line per request to output. A blank line or EOF terminates the
// loop silently. A line that fails to parse yields a -32700 error with a
// null id.
func (s *Server) Run(input io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	encoder := json.NewEncoder(output)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			return nil
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			if werr := writeError(encoder, nil, codeParseError, fmt.Sprintf("Parse error: %v", err)); werr != nil {
				return werr
			}
			continue
		}

		if err := s.dispatch(encoder, &req); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// dispatch routes one parsed request and writes exactly one response for
// it (plus the initialized notification after initialize). The returned
// error is a write failure on the output stream, never a handler error.
func (s *Server) dispatch(encoder *json.Encoder, req *request) error {
	start := time.Now()

	var result any
	var handlerErr error

	switch req.Method {
	case "initialize":
		result = initializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      serverInfo{Name: serverName, Version: serverVersion},
		}
	case "tools/list":
		result = toolsListResult{Tools: toolCatalog}
	case "tools/call":
		result, handlerErr = s.handleToolsCall(req.Params)
	default:
		handlerErr = fmt.Errorf("Unknown method: %s", req.Method)
	}

	duration := time.Since(start)
	status := "success"
	if handlerErr != nil {
		status = "error"
	}
	s.metrics.RecordRequest(req.Method, status, duration)
	s.log.LogRequest(req.Method, duration, handlerErr)

	if handlerErr != nil {
		return writeError(encoder, req.ID, codeServerError, handlerErr.Error())
	}
	if err := writeResult(encoder, req.ID, result); err != nil {
		return err
	}
	if req.Method == "initialize" {
		return encoder.Encode(notification{
			JSONRPC: "2.0",
			Method:  "notifications/initialized",
			Params:  struct{}{},
		})
	}
	return nil
}

// handleToolsCall decodes the call parameters and routes by tool name.
// A panicking handler is converted to an error here; nothing below the
// dispatch boundary may terminate the session.
func (s *Server) handleToolsCall(params json.RawMessage) (result toolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = toolResult{}
			err = fmt.Errorf("tool handler panic: %v", r)
		}
	}()

	var call toolsCallParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &call); err != nil {
			return toolResult{}, fmt.Errorf("invalid tools/call params: %w", err)
		}
	}

	start := time.Now()

	switch call.Name {
	case toolSearch:
		result, err = s.handleSearch(call.Arguments)
	case toolRead:
		result, err = s.handleRead(call.Arguments)
	case toolWebSearch:
		result, err = s.handleWebSearch(call.Arguments)
	case toolCiteValidate:
		result, err = s.handleCiteValidate(call.Arguments)
	default:
		return toolResult{}, fmt.Errorf("Unknown tool: %s", call.Name)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordToolCall(call.Name, status, time.Since(start))
	return result, err
}

func (s *Server) handleSearch(raw json.RawMessage) (toolResult, error) {
	var args searchArgs
	if err := decodeArgs(raw, &args); err != nil {
		return toolResult{}, err
	}
	if args.K <= 0 {
		args.K = defaultK
	}

	results := s.engine.Search(args.Query, args.K)
	s.metrics.SearchQueriesTotal.Inc()
	s.metrics.SearchResultsTotal.Add(float64(len(results)))

	payload := struct {
		Query   string          `json:"query"`
		Results []search.Result `json:"results"`
	}{Query: args.Query, Results: results}
	return jsonResult(payload)
}

func (s *Server) handleRead(raw json.RawMessage) (toolResult, error) {
	var args readArgs
	if err := decodeArgs(raw, &args); err != nil {
		return toolResult{}, err
	}
	s.metrics.SectionReadsTotal.Inc()

	node, ok := s.store.Graph.Node(args.SectionID)
	if !ok {
		return textResult(fmt.Sprintf("Error: section_id '%s' not found", args.SectionID)), nil
	}
	return jsonResult(readPayload{
		SectionID: args.SectionID,
		Text:      node.Text,
		Title:     node.Title,
		SOP:       node.SOP,
		Section:   node.Section,
	})
}

func (s *Server) handleWebSearch(raw json.RawMessage) (toolResult, error) {
	var args searchArgs
	if err := decodeArgs(raw, &args); err != nil {
		return toolResult{}, err
	}
	if args.K <= 0 {
		args.K = defaultK
	}

	resp := s.web.Search(args.Query, args.K)
	outcome := "ok"
	switch {
	case !s.web.Enabled():
		outcome = "disabled"
	case resp.Warning != "":
		outcome = "degraded"
	}
	s.metrics.WebSearchesTotal.WithLabelValues(outcome).Inc()

	payload := struct {
		Query   string             `json:"query"`
		Results []websearch.Result `json:"results"`
		Warning string             `json:"warning,omitempty"`
	}{Query: args.Query, Results: resp.Results, Warning: resp.Warning}
	return jsonResult(payload)
}

func (s *Server) handleCiteValidate(raw json.RawMessage) (toolResult, error) {
	var args citeArgs
	if err := decodeArgs(raw, &args); err != nil {
		return toolResult{}, err
	}
	s.metrics.CiteValidationsTotal.Inc()
	return jsonResult(cite.Validate(args.Text, args.Citations))
}

// decodeArgs unmarshals tool arguments, treating absent arguments as an
// empty object so every field keeps its zero value.
func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

// jsonResult wraps a payload as a text content block holding the payload
// as 2-space-indented JSON.
func jsonResult(payload any) (toolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return toolResult{}, fmt.Errorf("encoding tool result: %w", err)
	}
	return textResult(string(data)), nil
}

func textResult(text string) toolResult {
	return toolResult{Content: []contentBlock{{Type: "text", Text: text}}}
}

// writeResult emits a success response. A missing request id is written
// as null.
func writeResult(encoder *json.Encoder, id json.RawMessage, result any) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      normalizeID(id),
		Result:  result,
	})
}

// writeError emits an error response with the given code and message.
func writeError(encoder *json.Encoder, id json.RawMessage, code int, message string) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      normalizeID(id),
		Error:   &rpcError{Code: code, Message: message},
	})
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}
