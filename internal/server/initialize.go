package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const serverName = "go-java-lsp"

var serverVersion = "0.1.0"

// Initialize handles the first request of the session: it records what the
// client can do and advertises what we provide.
func (s *Server) Initialize(params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.clientCapabilities = &params.Capabilities

	if params.RootURI != nil {
		s.workspaceFolders = []string{*params.RootURI}
	}

	trueVal := true
	falseVal := false
	changeKind := protocol.TextDocumentSyncKindIncremental

	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &changeKind,
			WillSave:  &trueVal,
			Save: &protocol.SaveOptions{
				IncludeText: &falseVal,
			},
		},

		HoverProvider:      &trueVal,
		DefinitionProvider: &trueVal,
		ReferencesProvider: &trueVal,

		DocumentSymbolProvider:  &trueVal,
		WorkspaceSymbolProvider: &trueVal,

		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"."},
			ResolveProvider:   &trueVal,
		},

		SignatureHelpProvider: &protocol.SignatureHelpOptions{
			TriggerCharacters: []string{"(", ","},
		},

		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: &trueVal,
		},

		CodeActionProvider: &protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{
				protocol.CodeActionKindQuickFix,
				protocol.CodeActionKindRefactor,
			},
		},

		CodeLensProvider: &protocol.CodeLensOptions{
			ResolveProvider: &trueVal,
		},

		DocumentLinkProvider: &protocol.DocumentLinkOptions{
			ResolveProvider: &falseVal,
		},

		DocumentFormattingProvider: &trueVal,
		FoldingRangeProvider:       &trueVal,
	}

	return &protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &serverVersion,
		},
	}, nil
}

// Initialized runs once the client confirms the handshake. Watching build
// files needs a dynamic registration, so it happens here rather than in the
// static capabilities.
func (s *Server) Initialized() error {
	s.client.RegisterCapability("workspace/didChangeWatchedFiles", map[string]any{
		"watchers": []map[string]any{
			{"globPattern": "**/*.java"},
			{"globPattern": "**/pom.xml"},
			{"globPattern": "**/build.gradle"},
		},
	})
	return nil
}

// Shutdown flags intent to stop. The dispatch loop keeps running until the
// exit notification arrives.
func (s *Server) Shutdown() error {
	s.shuttingDown = true
	return nil
}
