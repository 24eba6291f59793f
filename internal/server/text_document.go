package server

import (
	"github.com/pkg/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpenTextDocument stores the document and queues it for linting.
func (s *Server) DidOpenTextDocument(params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.log.Debugf("document opened: %s (version %d, language %s, %d bytes)",
		uri, params.TextDocument.Version, params.TextDocument.LanguageID, len(params.TextDocument.Text))

	s.documents.Set(uri, &Document{
		URI:        uri,
		Text:       params.TextDocument.Text,
		Version:    int(params.TextDocument.Version),
		LanguageID: params.TextDocument.LanguageID,
	})
	s.markDirty(uri)
	return nil
}

// DidChangeTextDocument applies the edit batch to the stored text.
func (s *Server) DidChangeTextDocument(params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc, ok := s.documents.Get(uri)
	if !ok {
		return errors.Errorf("change for unopened document %s", uri)
	}

	changes := make([]protocol.TextDocumentContentChangeEvent, 0, len(params.ContentChanges))
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, c)
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, protocol.TextDocumentContentChangeEvent{Text: c.Text})
		default:
			return errors.Errorf("unexpected content change type %T for %s", change, uri)
		}
	}

	if err := doc.ApplyChanges(changes); err != nil {
		return errors.Wrapf(err, "applying changes to %s", uri)
	}
	doc.Version = int(params.TextDocument.Version)

	s.markDirty(uri)
	return nil
}

// WillSaveTextDocument is informational only.
func (s *Server) WillSaveTextDocument(params *protocol.WillSaveTextDocumentParams) error {
	s.log.Debugf("document will save: %s", params.TextDocument.URI)
	return nil
}

// WillSaveWaitUntilTextDocument could return pre-save edits; we have none.
func (s *Server) WillSaveWaitUntilTextDocument(params *protocol.WillSaveTextDocumentParams) ([]protocol.TextEdit, error) {
	return nil, nil
}

// DidSaveTextDocument re-queues the document so saved state gets a fresh
// lint pass.
func (s *Server) DidSaveTextDocument(params *protocol.DidSaveTextDocumentParams) error {
	s.markDirty(params.TextDocument.URI)
	return nil
}

// DidCloseTextDocument forgets the document and clears its diagnostics from
// the editor.
func (s *Server) DidCloseTextDocument(params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.documents.Delete(uri)
	s.client.PublishDiagnostics(&protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}
