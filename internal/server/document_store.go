// Package server provides the reference LanguageServer implementation: open
// document tracking, capability negotiation, and deferred diagnostics. The
// real analysis engine lives behind the same interface; this implementation
// answers from document text alone.
package server

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/pkg/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Document is one open document in the editor.
type Document struct {
	URI        string
	Text       string
	Version    int
	LanguageID string
}

// DocumentStore tracks all open documents. Every access happens on the
// dispatch goroutine, which is the single writer over all handler state,
// so no locking is required.
type DocumentStore struct {
	documents map[string]*Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Set stores or replaces a document.
func (ds *DocumentStore) Set(uri string, doc *Document) {
	ds.documents[uri] = doc
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (*Document, bool) {
	doc, ok := ds.documents[uri]
	return doc, ok
}

// Delete removes a document.
func (ds *DocumentStore) Delete(uri string) {
	delete(ds.documents, uri)
}

// List returns all open document URIs.
func (ds *DocumentStore) List() []string {
	uris := make([]string, 0, len(ds.documents))
	for uri := range ds.documents {
		uris = append(uris, uri)
	}
	return uris
}

// ApplyChanges applies a didChange batch to a document in order. A change
// without a range replaces the whole text (full sync); ranged changes are
// spliced at UTF-16 positions, which is what LSP clients send.
func (doc *Document) ApplyChanges(changes []protocol.TextDocumentContentChangeEvent) error {
	for _, change := range changes {
		if change.Range == nil {
			doc.Text = change.Text
			continue
		}
		start, err := positionToOffset(doc.Text, change.Range.Start)
		if err != nil {
			return errors.Wrap(err, "change start")
		}
		end, err := positionToOffset(doc.Text, change.Range.End)
		if err != nil {
			return errors.Wrap(err, "change end")
		}
		if start > end {
			return errors.Errorf("change start %d after end %d", start, end)
		}
		doc.Text = doc.Text[:start] + change.Text + doc.Text[end:]
	}
	return nil
}

// positionToOffset converts an LSP position (zero-based line, UTF-16
// character offset) to a byte offset into text.
func positionToOffset(text string, pos protocol.Position) (int, error) {
	offset := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return 0, errors.Errorf("line %d out of range", pos.Line)
		}
		offset += nl + 1
	}

	rest := text[offset:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}

	units := protocol.UInteger(0)
	for i, r := range rest {
		if units >= pos.Character {
			return offset + i, nil
		}
		units += protocol.UInteger(len(utf16.Encode([]rune{r})))
	}
	if units < pos.Character {
		return 0, errors.Errorf("character %d exceeds line %d length %d", pos.Character, pos.Line, units)
	}
	return offset + len(rest), nil
}

// WordAt returns the identifier under pos and its range, or "" when pos is
// not on one. ASCII identifiers only, which covers hover and prepareRename
// well enough without the analysis engine.
func (doc *Document) WordAt(pos protocol.Position) (string, *protocol.Range) {
	offset, err := positionToOffset(doc.Text, pos)
	if err != nil {
		return "", nil
	}

	isIdent := func(b byte) bool {
		return b == '_' || unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b))
	}

	start := offset
	for start > 0 && isIdent(doc.Text[start-1]) {
		start--
	}
	end := offset
	for end < len(doc.Text) && isIdent(doc.Text[end]) {
		end++
	}
	if start == end {
		return "", nil
	}

	word := doc.Text[start:end]
	wordRange := &protocol.Range{
		Start: protocol.Position{Line: pos.Line, Character: pos.Character - protocol.UInteger(offset-start)},
		End:   protocol.Position{Line: pos.Line, Character: pos.Character + protocol.UInteger(end-offset)},
	}
	return word, wordRange
}
