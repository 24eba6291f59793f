package server

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// The feature operations below answer from document text alone. Anything
// that needs symbol resolution returns an empty answer; the analysis engine
// plugs in behind the same rpc.LanguageServer interface.

// Completion offers language keywords when the document is known.
func (s *Server) Completion(params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	if _, ok := s.documents.Get(params.TextDocument.URI); !ok {
		return nil, nil
	}

	kind := protocol.CompletionItemKindKeyword
	items := make([]protocol.CompletionItem, 0, len(javaKeywords))
	for _, keyword := range javaKeywords {
		items = append(items, protocol.CompletionItem{
			Label: keyword,
			Kind:  &kind,
		})
	}

	return &protocol.CompletionList{
		IsIncomplete: true,
		Items:        items,
	}, nil
}

// ResolveCompletionItem has nothing to add to keyword items.
func (s *Server) ResolveCompletionItem(params *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	return params, nil
}

// Hover shows the identifier under the cursor.
func (s *Server) Hover(params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word, wordRange := doc.WordAt(params.Position)
	if word == "" {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: fmt.Sprintf("```java\n%s\n```", word),
		},
		Range: wordRange,
	}, nil
}

// SignatureHelp needs the engine's call resolution.
func (s *Server) SignatureHelp(params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	return nil, nil
}

// Definition needs the engine's symbol table.
func (s *Server) Definition(params *protocol.DefinitionParams) ([]protocol.Location, error) {
	return nil, nil
}

// References needs the engine's symbol table.
func (s *Server) References(params *protocol.ReferenceParams) ([]protocol.Location, error) {
	return nil, nil
}

// DocumentSymbol needs the engine's parse tree.
func (s *Server) DocumentSymbol(params *protocol.DocumentSymbolParams) ([]protocol.DocumentSymbol, error) {
	return nil, nil
}

// DocumentLink reports no links.
func (s *Server) DocumentLink(params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	return nil, nil
}

// CodeAction reports no actions.
func (s *Server) CodeAction(params *protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	return nil, nil
}

// CodeLens reports no lenses.
func (s *Server) CodeLens(params *protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	return nil, nil
}

// ResolveCodeLens echoes the lens back unchanged.
func (s *Server) ResolveCodeLens(params *protocol.CodeLens) (*protocol.CodeLens, error) {
	return params, nil
}

// PrepareRename accepts any identifier; whether the rename itself succeeds
// is decided later.
func (s *Server) PrepareRename(params *protocol.PrepareRenameParams) (*protocol.Range, error) {
	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word, wordRange := doc.WordAt(params.Position)
	if word == "" {
		return nil, nil
	}
	return wordRange, nil
}

// Rename needs the engine's reference index.
func (s *Server) Rename(params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	return nil, nil
}

// Formatting reports no edits.
func (s *Server) Formatting(params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	return nil, nil
}

// FoldingRange folds balanced brace blocks that span multiple lines,
// computed straight from the text.
func (s *Server) FoldingRange(params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	var ranges []protocol.FoldingRange
	var stack []protocol.UInteger

	line := protocol.UInteger(0)
	for _, b := range []byte(doc.Text) {
		switch b {
		case '\n':
			line++
		case '{':
			stack = append(stack, line)
		case '}':
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if line > open {
				ranges = append(ranges, protocol.FoldingRange{
					StartLine: open,
					EndLine:   line,
				})
			}
		}
	}

	return ranges, nil
}

var javaKeywords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch",
	"char", "class", "const", "continue", "default", "do", "double",
	"else", "enum", "extends", "final", "finally", "float", "for",
	"goto", "if", "implements", "import", "instanceof", "int",
	"interface", "long", "native", "new", "package", "private",
	"protected", "public", "return", "short", "static", "strictfp",
	"super", "switch", "synchronized", "this", "throw", "throws",
	"transient", "try", "void", "volatile", "while",
}
