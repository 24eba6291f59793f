package server

import (
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/javals/go-java-lsp/internal/rpc"
)

// Config holds server configuration options, updatable at runtime via
// workspace/didChangeConfiguration.
type Config struct {
	// MaxProblems limits the number of diagnostics reported per document.
	MaxProblems int

	// Trace controls logging verbosity requested by the client.
	Trace string
}

// Server is the reference rpc.LanguageServer. All of its state is owned by
// the dispatch goroutine: handler operations and DoAsyncWork run strictly
// sequentially, so there is no locking here.
type Server struct {
	client rpc.Client
	log    commonlog.Logger

	documents *DocumentStore

	// dirty queues documents for the next idle-work slices, oldest first.
	dirty []string

	workspaceFolders   []string
	clientCapabilities *protocol.ClientCapabilities
	config             Config

	shuttingDown bool
}

// New creates a server that reports back through client.
func New(client rpc.Client, log commonlog.Logger) *Server {
	return &Server{
		client:    client,
		log:       log,
		documents: NewDocumentStore(),
		config: Config{
			MaxProblems: 100,
			Trace:       "off",
		},
	}
}

// Documents returns the document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// IsShuttingDown reports whether a shutdown request has been received.
func (s *Server) IsShuttingDown() bool {
	return s.shuttingDown
}

// WorkspaceFolders returns the current workspace folder URIs.
func (s *Server) WorkspaceFolders() []string {
	return s.workspaceFolders
}

// markDirty queues a document for the idle lint pass. Re-marking moves it
// to the back rather than queueing it twice.
func (s *Server) markDirty(uri string) {
	for i, queued := range s.dirty {
		if queued == uri {
			s.dirty = append(s.dirty[:i], s.dirty[i+1:]...)
			break
		}
	}
	s.dirty = append(s.dirty, uri)
}

// DoAsyncWork is the dispatcher's idle-work hook. Each invocation lints at
// most one dirty document and publishes its diagnostics, keeping individual
// slices short so the loop stays responsive.
func (s *Server) DoAsyncWork() {
	if len(s.dirty) == 0 {
		return
	}

	uri := s.dirty[0]
	s.dirty = s.dirty[1:]

	doc, ok := s.documents.Get(uri)
	if !ok {
		// Closed while queued; its diagnostics were already cleared.
		return
	}

	diagnostics := lint(doc.Text, s.config.MaxProblems)
	s.log.Debugf("publishing %d diagnostic(s) for %s", len(diagnostics), uri)
	s.client.PublishDiagnostics(&protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: diagnostics,
	})
}
