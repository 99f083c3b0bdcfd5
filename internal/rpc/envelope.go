// Package rpc implements the JSON-RPC 2.0 tool interface used by agent clients.
package rpc

import (
	"bytes"
	"encoding/json"
)

// Version is the only protocol tag accepted and emitted.
const Version = "2.0"

// Reserved JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
)

var nullID = json.RawMessage("null")

// Request is an incoming envelope. ID is kept raw so it round-trips unchanged.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is an outgoing envelope. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a transport-level failure.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func responseID(id json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(id)) == 0 {
		return nullID
	}
	return id
}

func success(id json.RawMessage, result any) Response {
	return Response{JSONRPC: Version, ID: responseID(id), Result: result}
}

func failure(id json.RawMessage, code int, message string) Response {
	return Response{JSONRPC: Version, ID: responseID(id), Error: &Error{Code: code, Message: message}}
}

// Content is one block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the in-band outcome of tools/call. Failures set IsError instead of using Error.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

func textResult(text string) ToolResult {
	return ToolResult{Content: []Content{{Type: "text", Text: text}}}
}

func errorResult(text string) ToolResult {
	return ToolResult{Content: []Content{{Type: "text", Text: text}}, IsError: true}
}

// ServerInfo names the server in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is the static capability metadata.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}
