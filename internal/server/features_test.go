package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestCompletionOffersKeywords(t *testing.T) {
	srv, _ := newTestServer()
	openDocument(t, srv, "file:///a.java", "cla")

	list, err := srv.Completion(&protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.java"},
			Position:     protocol.Position{Line: 0, Character: 3},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.True(t, list.IsIncomplete)

	labels := make(map[string]bool, len(list.Items))
	for _, item := range list.Items {
		labels[item.Label] = true
	}
	assert.True(t, labels["class"])
	assert.True(t, labels["interface"])
}

func TestCompletionUnknownDocument(t *testing.T) {
	srv, _ := newTestServer()

	list, err := srv.Completion(&protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///nope.java"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestHoverShowsWordUnderCursor(t *testing.T) {
	srv, _ := newTestServer()
	openDocument(t, srv, "file:///a.java", "int counter = 0;")

	hover, err := srv.Hover(&protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.java"},
			Position:     protocol.Position{Line: 0, Character: 6},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)

	content, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Contains(t, content.Value, "counter")
}

func TestHoverOnWhitespace(t *testing.T) {
	srv, _ := newTestServer()
	openDocument(t, srv, "file:///a.java", "a  b")

	hover, err := srv.Hover(&protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.java"},
			Position:     protocol.Position{Line: 0, Character: 2},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, hover)
}

func TestPrepareRenameReturnsWordRange(t *testing.T) {
	srv, _ := newTestServer()
	openDocument(t, srv, "file:///a.java", "int counter = 0;")

	r, err := srv.PrepareRename(&protocol.PrepareRenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.java"},
			Position:     protocol.Position{Line: 0, Character: 6},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, protocol.UInteger(4), r.Start.Character)
	assert.Equal(t, protocol.UInteger(11), r.End.Character)
}

func TestFoldingRangeOverNestedBraces(t *testing.T) {
	srv, _ := newTestServer()
	openDocument(t, srv, "file:///a.java", "class A {\n  void m() {\n    run();\n  }\n}\n")

	ranges, err := srv.FoldingRange(&protocol.FoldingRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.java"},
	})
	require.NoError(t, err)
	require.Len(t, ranges, 2)

	// Inner blocks close first.
	assert.Equal(t, protocol.UInteger(1), ranges[0].StartLine)
	assert.Equal(t, protocol.UInteger(3), ranges[0].EndLine)
	assert.Equal(t, protocol.UInteger(0), ranges[1].StartLine)
	assert.Equal(t, protocol.UInteger(4), ranges[1].EndLine)
}

func TestFoldingRangeSkipsSingleLineBlocks(t *testing.T) {
	srv, _ := newTestServer()
	openDocument(t, srv, "file:///a.java", "void m() { run(); }\n")

	ranges, err := srv.FoldingRange(&protocol.FoldingRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.java"},
	})
	require.NoError(t, err)
	assert.Empty(t, ranges)
}
