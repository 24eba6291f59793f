// Package rpc implements the JSON-RPC transport and dispatch core of the
// language server: Content-Length framing, a cancellation-aware message
// queue, and the single-threaded dispatch loop that routes requests to a
// LanguageServer implementation.
package rpc

import "encoding/json"

// JSON-RPC 2.0 error codes used on the wire.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// MethodCancelRequest is the cancellation notification method. Cancellation
// is handled at enqueue time (see queue.go); the dispatcher ignores it.
const MethodCancelRequest = "$/cancelRequest"

// Message is the wire envelope for every inbound frame. A message with a
// non-nil ID and a method is a request; with a nil ID and a method, a
// notification. Params stays raw until the dispatcher knows the target type.
type Message struct {
	ID     *int64          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
}

// IsRequest reports whether the message expects a response.
func (m *Message) IsRequest() bool {
	return m.ID != nil && m.Method != ""
}

// IsNotification reports whether the message is fire-and-forget.
func (m *Message) IsNotification() bool {
	return m.ID == nil && m.Method != ""
}

// ResponseError is the JSON-RPC error payload of a failed request.
type ResponseError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ResponseError) Error() string {
	return e.Message
}
