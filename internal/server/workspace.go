package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeWorkspaceFolders updates the folder list as the client adds or
// removes workspace roots.
func (s *Server) DidChangeWorkspaceFolders(params *protocol.DidChangeWorkspaceFoldersParams) error {
	for _, folder := range params.Event.Removed {
		s.log.Infof("workspace folder removed: %s (%s)", folder.Name, folder.URI)
		for i, existing := range s.workspaceFolders {
			if existing == folder.URI {
				s.workspaceFolders = append(s.workspaceFolders[:i], s.workspaceFolders[i+1:]...)
				break
			}
		}
	}

	for _, folder := range params.Event.Added {
		s.log.Infof("workspace folder added: %s (%s)", folder.Name, folder.URI)
		s.workspaceFolders = append(s.workspaceFolders, folder.URI)
	}

	return nil
}

// DidChangeConfiguration picks server settings out of the client's
// configuration blob. Settings live under the "go-java-lsp" namespace:
//
//	{"go-java-lsp": {"maxProblems": 100, "trace": "off"}}
func (s *Server) DidChangeConfiguration(params *protocol.DidChangeConfigurationParams) error {
	settingsMap, ok := params.Settings.(map[string]any)
	if !ok {
		return nil
	}
	settings, ok := settingsMap[serverName].(map[string]any)
	if !ok {
		return nil
	}

	if maxProblems, ok := settings["maxProblems"].(float64); ok {
		s.config.MaxProblems = int(maxProblems)
		s.log.Infof("configuration updated: maxProblems = %d", s.config.MaxProblems)
	}

	if trace, ok := settings["trace"].(string); ok {
		s.config.Trace = trace
		s.log.Infof("configuration updated: trace = %s", trace)
	}

	// Settings can change lint limits; refresh everything that is open.
	for _, uri := range s.documents.List() {
		s.markDirty(uri)
	}

	return nil
}

// DidChangeWatchedFiles re-queues open documents whose on-disk counterparts
// changed. Unopened files are the engine's business, not ours.
func (s *Server) DidChangeWatchedFiles(params *protocol.DidChangeWatchedFilesParams) error {
	for _, change := range params.Changes {
		if _, ok := s.documents.Get(change.URI); ok {
			s.markDirty(change.URI)
		}
	}
	return nil
}

// WorkspaceSymbols needs the engine's index; without one there is nothing
// to report.
func (s *Server) WorkspaceSymbols(params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	return nil, nil
}
