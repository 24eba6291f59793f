package rpc

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// State tracks the dispatch loop lifecycle. Shutdown only flags intent;
// the loop keeps running until an exit message or stream closure.
type State int

const (
	StateRunning State = iota
	StateShuttingDown
	StateExited
)

// DefaultPollInterval is how long one queue poll waits before the
// dispatcher gives the idle-work hook a turn. Longer intervals starve
// deferred work; shorter ones burn CPU on an idle connection.
const DefaultPollInterval = time.Second

// Options tunes a connection. Zero values select the defaults.
type Options struct {
	Logger       commonlog.Logger
	PollInterval time.Duration
	QueueSize    int
}

// Connect wires a LanguageServer to a client over receive/send and blocks
// until the connection ends. A dedicated goroutine reads and enqueues
// frames; the calling goroutine runs the dispatch loop and is the only one
// that touches the server or produces outbound bytes, so server state needs
// no locking against the transport.
func Connect(factory func(Client) LanguageServer, receive io.Reader, send io.Writer, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = commonlog.GetLogger("rpc")
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	writer := NewWriter(send)
	d := &dispatcher{
		queue:        NewQueue(opts.QueueSize),
		writer:       writer,
		server:       factory(newRemoteClient(writer, log)),
		log:          log,
		pollInterval: pollInterval,
	}

	go d.readLoop(NewReader(receive))
	d.run()
	return nil
}

type dispatcher struct {
	queue        *Queue
	writer       *Writer
	server       LanguageServer
	log          commonlog.Logger
	pollInterval time.Duration
	state        State
}

// readLoop decodes frames and enqueues them until the stream closes or a
// transport fault kills it. Either way it pushes the closed entry so the
// dispatch loop observes the end of input instead of idling forever.
func (d *dispatcher) readLoop(reader *Reader) {
	d.log.Info("placing incoming messages on queue")

	for {
		msg, err := reader.Next()
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				d.log.Info("read stream has been closed, putting closed entry onto queue")
			} else {
				d.log.Errorf("transport fault, terminating reader: %s", err.Error())
			}
			if err := d.queue.PutClosed(); err != nil {
				d.log.Info("dispatch loop already gone, dropping closed entry")
			}
			return
		}

		d.peek(msg)

		if err := d.queue.Put(msg); err != nil {
			// Dispatcher exited while we blocked on a full queue.
			return
		}
	}
}

// peek handles $/cancelRequest before enqueue: a matching request still in
// the queue is removed. Whether anything was removed is purely
// observational; cancelling a dispatched or unknown request is a no-op. The
// cancel message itself is still enqueued and ignored at dispatch.
func (d *dispatcher) peek(msg *Message) {
	if msg.Method != MethodCancelRequest {
		return
	}
	id := gjson.GetBytes(msg.Params, "id")
	if !id.Exists() {
		d.log.Warningf("cancel request without an id: %s", msg.Params)
		return
	}
	if d.queue.Remove(id.Int()) {
		d.log.Infof("cancelled request %d, which had not yet started", id.Int())
	} else {
		d.log.Infof("cannot cancel request %d because it has already started", id.Int())
	}
}

// run is the dispatch loop: poll, idle, route, repeat until exit.
func (d *dispatcher) run() {
	d.log.Info("reading messages from queue")

	for d.state != StateExited {
		entry, ok := d.queue.Poll(d.pollInterval)
		if !ok {
			// Nothing arrived within the poll window; give deferred work a
			// slice on this goroutine.
			d.server.DoAsyncWork()
			continue
		}

		if entry.Closed {
			d.log.Warning("stream from client has been closed, exiting")
			d.state = StateExited
			break
		}

		if d.dispatch(entry.Msg) {
			if d.state != StateShuttingDown {
				d.log.Warning("got exit without preceding shutdown")
			}
			d.state = StateExited
		}
	}

	// Unpark the reader if it is blocked on a full queue; any messages still
	// queued are abandoned.
	d.queue.Close()
}

// dispatch routes one message and reports whether the loop should exit.
// Handler failures and panics never propagate: requests get an
// internal-error response, notifications are logged and swallowed.
func (d *dispatcher) dispatch(msg *Message) (exit bool) {
	defer func() {
		if r := recover(); r != nil {
			d.fail(msg, errors.Errorf("handler panic: %v", r))
		}
	}()

	switch msg.Method {
	case "initialize":
		var params protocol.InitializeParams
		if d.decode(msg, &params) {
			result, err := d.server.Initialize(&params)
			d.complete(msg, result, err)
		}
	case "initialized":
		d.completeNotify(msg, d.server.Initialized())
	case "shutdown":
		d.log.Warning("got shutdown message")
		if err := d.server.Shutdown(); err != nil {
			d.fail(msg, err)
		} else {
			d.complete(msg, nil, nil)
			d.state = StateShuttingDown
		}
	case "exit":
		d.log.Warning("got exit message, exiting")
		return true
	case MethodCancelRequest:
		// Already handled in peek at enqueue time.
	case "workspace/didChangeWorkspaceFolders":
		var params protocol.DidChangeWorkspaceFoldersParams
		if d.decode(msg, &params) {
			d.completeNotify(msg, d.server.DidChangeWorkspaceFolders(&params))
		}
	case "workspace/didChangeConfiguration":
		var params protocol.DidChangeConfigurationParams
		if d.decode(msg, &params) {
			d.completeNotify(msg, d.server.DidChangeConfiguration(&params))
		}
	case "workspace/didChangeWatchedFiles":
		var params protocol.DidChangeWatchedFilesParams
		if d.decode(msg, &params) {
			d.completeNotify(msg, d.server.DidChangeWatchedFiles(&params))
		}
	case "workspace/symbol":
		var params protocol.WorkspaceSymbolParams
		if d.decode(msg, &params) {
			result, err := d.server.WorkspaceSymbols(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/documentLink":
		var params protocol.DocumentLinkParams
		if d.decode(msg, &params) {
			result, err := d.server.DocumentLink(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if d.decode(msg, &params) {
			d.completeNotify(msg, d.server.DidOpenTextDocument(&params))
		}
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if d.decode(msg, &params) {
			d.completeNotify(msg, d.server.DidChangeTextDocument(&params))
		}
	case "textDocument/willSave":
		var params protocol.WillSaveTextDocumentParams
		if d.decode(msg, &params) {
			d.completeNotify(msg, d.server.WillSaveTextDocument(&params))
		}
	case "textDocument/willSaveWaitUntil":
		var params protocol.WillSaveTextDocumentParams
		if d.decode(msg, &params) {
			result, err := d.server.WillSaveWaitUntilTextDocument(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/didSave":
		var params protocol.DidSaveTextDocumentParams
		if d.decode(msg, &params) {
			d.completeNotify(msg, d.server.DidSaveTextDocument(&params))
		}
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if d.decode(msg, &params) {
			d.completeNotify(msg, d.server.DidCloseTextDocument(&params))
		}
	case "textDocument/completion":
		var params protocol.CompletionParams
		if d.decode(msg, &params) {
			result, err := d.server.Completion(&params)
			d.complete(msg, result, err)
		}
	case "completionItem/resolve":
		var params protocol.CompletionItem
		if d.decode(msg, &params) {
			result, err := d.server.ResolveCompletionItem(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/hover":
		var params protocol.HoverParams
		if d.decode(msg, &params) {
			result, err := d.server.Hover(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/signatureHelp":
		var params protocol.SignatureHelpParams
		if d.decode(msg, &params) {
			result, err := d.server.SignatureHelp(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/definition":
		var params protocol.DefinitionParams
		if d.decode(msg, &params) {
			result, err := d.server.Definition(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/references":
		var params protocol.ReferenceParams
		if d.decode(msg, &params) {
			result, err := d.server.References(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/documentSymbol":
		var params protocol.DocumentSymbolParams
		if d.decode(msg, &params) {
			result, err := d.server.DocumentSymbol(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/codeAction":
		var params protocol.CodeActionParams
		if d.decode(msg, &params) {
			result, err := d.server.CodeAction(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/codeLens":
		var params protocol.CodeLensParams
		if d.decode(msg, &params) {
			result, err := d.server.CodeLens(&params)
			d.complete(msg, result, err)
		}
	case "codeLens/resolve":
		var params protocol.CodeLens
		if d.decode(msg, &params) {
			result, err := d.server.ResolveCodeLens(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/prepareRename":
		var params protocol.PrepareRenameParams
		if d.decode(msg, &params) {
			result, err := d.server.PrepareRename(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/rename":
		var params protocol.RenameParams
		if d.decode(msg, &params) {
			result, err := d.server.Rename(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/formatting":
		var params protocol.DocumentFormattingParams
		if d.decode(msg, &params) {
			result, err := d.server.Formatting(&params)
			d.complete(msg, result, err)
		}
	case "textDocument/foldingRange":
		var params protocol.FoldingRangeParams
		if d.decode(msg, &params) {
			result, err := d.server.FoldingRange(&params)
			d.complete(msg, result, err)
		}
	default:
		d.log.Warningf("don't know what to do with method %q", msg.Method)
	}
	return false
}

// decode unmarshals the raw params into target. Absent params are left at
// the target's zero value. A decode failure is reported like a handler
// failure, with the invalid-params code.
func (d *dispatcher) decode(msg *Message, target any) bool {
	if len(msg.Params) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Params, target); err != nil {
		d.failWith(msg, CodeInvalidParams, errors.Wrapf(err, "decoding %s params", msg.Method))
		return false
	}
	return true
}

// complete frames a request result, or the failure, as the response.
func (d *dispatcher) complete(msg *Message, result any, err error) {
	if err != nil {
		d.fail(msg, err)
		return
	}
	if msg.ID == nil {
		// Request-shaped method sent as a notification; nothing to answer.
		return
	}
	if err := respond(d.writer, *msg.ID, result); err != nil {
		d.log.Errorf("sending response to request %d: %s", *msg.ID, err.Error())
	}
}

// completeNotify records a notification failure; there is no id to answer.
func (d *dispatcher) completeNotify(msg *Message, err error) {
	if err != nil {
		d.fail(msg, err)
	}
}

func (d *dispatcher) fail(msg *Message, err error) {
	d.failWith(msg, CodeInternalError, err)
}

func (d *dispatcher) failWith(msg *Message, code int64, err error) {
	d.log.Errorf("%s: %s", msg.Method, err.Error())
	if msg.ID == nil {
		return
	}
	respErr := &ResponseError{Code: code, Message: err.Error()}
	if err := respondError(d.writer, *msg.ID, respErr); err != nil {
		d.log.Errorf("sending error response to request %d: %s", *msg.ID, err.Error())
	}
}
