package rpc

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Client is the server-to-client side of the connection, handed to the
// LanguageServer at construction. All methods are safe to call from the
// dispatcher goroutine; the underlying frame writer serializes the bytes.
type Client interface {
	PublishDiagnostics(params *protocol.PublishDiagnosticsParams)
	ShowMessage(params *protocol.ShowMessageParams)
	RegisterCapability(method string, options any)

	// Notify sends an arbitrary custom notification by name.
	Notify(method string, params any)
}

type remoteClient struct {
	writer *Writer
	log    commonlog.Logger
}

func newRemoteClient(writer *Writer, log commonlog.Logger) *remoteClient {
	return &remoteClient{writer: writer, log: log}
}

func (c *remoteClient) PublishDiagnostics(params *protocol.PublishDiagnosticsParams) {
	c.Notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}

func (c *remoteClient) ShowMessage(params *protocol.ShowMessageParams) {
	c.Notify(protocol.ServerWindowShowMessage, params)
}

func (c *remoteClient) RegisterCapability(method string, options any) {
	params := protocol.RegistrationParams{
		Registrations: []protocol.Registration{
			{
				ID:              ksuid.New().String(),
				Method:          method,
				RegisterOptions: options,
			},
		},
	}
	c.Notify(protocol.ServerClientRegisterCapability, params)
}

func (c *remoteClient) Notify(method string, params any) {
	if err := notify(c.writer, method, params); err != nil {
		c.log.Errorf("sending %s notification: %s", method, err.Error())
	}
}

// outboundResponse always carries a result member, rendered as null when the
// operation produced nothing. Editors expect the field to be present.
type outboundResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Result  any    `json:"result"`
}

type outboundErrorResponse struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Error   *ResponseError `json:"error"`
}

// outboundNotification likewise always carries params.
type outboundNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

func respond(w *Writer, requestID int64, result any) error {
	payload, err := json.Marshal(outboundResponse{
		JSONRPC: "2.0",
		ID:      requestID,
		Result:  result,
	})
	if err != nil {
		return errors.Wrapf(err, "encoding response to request %d", requestID)
	}
	return w.WriteFrame(payload)
}

func respondError(w *Writer, requestID int64, respErr *ResponseError) error {
	payload, err := json.Marshal(outboundErrorResponse{
		JSONRPC: "2.0",
		ID:      requestID,
		Error:   respErr,
	})
	if err != nil {
		return errors.Wrapf(err, "encoding error response to request %d", requestID)
	}
	return w.WriteFrame(payload)
}

func notify(w *Writer, method string, params any) error {
	payload, err := json.Marshal(outboundNotification{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return errors.Wrapf(err, "encoding %s notification", method)
	}
	return w.WriteFrame(payload)
}
