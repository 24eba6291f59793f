package rpc

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LanguageServer is the capability set the dispatcher routes into, one
// operation per recognized method. It is implemented by the analysis
// engine, which is free to fail: request failures come back to the client
// as internal-error responses, notification failures are logged and
// swallowed, and neither stops the dispatch loop.
//
// Every operation runs on the dispatcher goroutine, so implementations own
// their state without locking against the transport. The flip side is that
// a blocking operation stalls dispatch entirely, including DoAsyncWork.
type LanguageServer interface {
	Initialize(params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	Initialized() error
	Shutdown() error

	DidChangeWorkspaceFolders(params *protocol.DidChangeWorkspaceFoldersParams) error
	DidChangeConfiguration(params *protocol.DidChangeConfigurationParams) error
	DidChangeWatchedFiles(params *protocol.DidChangeWatchedFilesParams) error
	WorkspaceSymbols(params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error)

	DidOpenTextDocument(params *protocol.DidOpenTextDocumentParams) error
	DidChangeTextDocument(params *protocol.DidChangeTextDocumentParams) error
	WillSaveTextDocument(params *protocol.WillSaveTextDocumentParams) error
	WillSaveWaitUntilTextDocument(params *protocol.WillSaveTextDocumentParams) ([]protocol.TextEdit, error)
	DidSaveTextDocument(params *protocol.DidSaveTextDocumentParams) error
	DidCloseTextDocument(params *protocol.DidCloseTextDocumentParams) error

	Completion(params *protocol.CompletionParams) (*protocol.CompletionList, error)
	ResolveCompletionItem(params *protocol.CompletionItem) (*protocol.CompletionItem, error)
	Hover(params *protocol.HoverParams) (*protocol.Hover, error)
	SignatureHelp(params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error)
	Definition(params *protocol.DefinitionParams) ([]protocol.Location, error)
	References(params *protocol.ReferenceParams) ([]protocol.Location, error)
	DocumentSymbol(params *protocol.DocumentSymbolParams) ([]protocol.DocumentSymbol, error)
	DocumentLink(params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error)
	CodeAction(params *protocol.CodeActionParams) ([]protocol.CodeAction, error)
	CodeLens(params *protocol.CodeLensParams) ([]protocol.CodeLens, error)
	ResolveCodeLens(params *protocol.CodeLens) (*protocol.CodeLens, error)
	PrepareRename(params *protocol.PrepareRenameParams) (*protocol.Range, error)
	Rename(params *protocol.RenameParams) (*protocol.WorkspaceEdit, error)
	Formatting(params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error)
	FoldingRange(params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error)

	// DoAsyncWork is the idle-work hook: the dispatcher calls it once each
	// time a poll times out with nothing to dispatch. Implementations should
	// do a bounded slice of deferred work per call and return.
	DoAsyncWork()
}
