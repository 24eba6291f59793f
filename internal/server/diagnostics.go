package server

import (
	"fmt"
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const diagnosticSource = "go-java-lsp"

type openDelimiter struct {
	char byte
	line protocol.UInteger
	col  protocol.UInteger
}

// lint runs the transport-level sanity check on a document: delimiter
// balance. It stands in for the engine's diagnostics so the deferred
// publish path has something real to push; the engine replaces it wholesale.
func lint(text string, maxProblems int) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	var stack []openDelimiter

	severity := protocol.DiagnosticSeverityError
	report := func(line, col protocol.UInteger, message string) {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: col},
				End:   protocol.Position{Line: line, Character: col + 1},
			},
			Severity: &severity,
			Source:   &[]string{diagnosticSource}[0],
			Message:  message,
		})
	}

	matching := map[byte]byte{')': '(', ']': '[', '}': '{'}

	line := protocol.UInteger(0)
	col := protocol.UInteger(0)
	for i := 0; i < len(text); i++ {
		b := text[i]
		switch b {
		case '\n':
			line++
			col = 0
			continue
		case '(', '[', '{':
			stack = append(stack, openDelimiter{char: b, line: line, col: col})
		case ')', ']', '}':
			if len(stack) == 0 {
				report(line, col, fmt.Sprintf("unmatched %q", string(b)))
				break
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.char != matching[b] {
				report(line, col, fmt.Sprintf("expected closing delimiter for %q, found %q", string(top.char), string(b)))
			}
		}
		col++
	}

	for _, open := range stack {
		report(open.line, open.col, fmt.Sprintf("unclosed %q", string(open.char)))
	}

	sortDiagnostics(diagnostics)

	if maxProblems > 0 && len(diagnostics) > maxProblems {
		diagnostics = diagnostics[:maxProblems]
	}
	return diagnostics
}

// sortDiagnostics orders by line, then column, so the editor presents them
// predictably.
func sortDiagnostics(diagnostics []protocol.Diagnostic) {
	sort.Slice(diagnostics, func(i, j int) bool {
		if diagnostics[i].Range.Start.Line != diagnostics[j].Range.Start.Line {
			return diagnostics[i].Range.Start.Line < diagnostics[j].Range.Start.Line
		}
		return diagnostics[i].Range.Start.Character < diagnostics[j].Range.Start.Character
	})
}
