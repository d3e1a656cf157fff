package lsp

import (
	"path/filepath"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"ysr/internal/errors"
	"ysr/internal/interp"
)

// analyze runs an interpreter session over the document at path, with every
// open document overlaying the file system, and returns the diagnostics
// that belong to path.
func (h *Handler) analyze(path string) []protocol.Diagnostic {
	h.mu.RLock()
	overlay := make(interp.MapLoader, len(h.content))
	for name, text := range h.content {
		overlay[filepath.Clean(name)] = text
	}
	h.mu.RUnlock()

	loader := interp.OverlayLoader{Overlay: overlay, Fallback: interp.OSLoader{}}
	opts := append(append([]interp.Option(nil), h.options...), interp.WithLoader(loader))
	in := interp.New(h.project, opts...)

	err := in.Process(path)
	diagnostics := ConvertDiagnostics(in.Diagnostics(), path)
	if err != nil {
		h.log.Warningf("analysis of %s stopped: %s", path, err)
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("ysr"),
			Message:  err.Error(),
		})
	}
	return diagnostics
}

// ConvertDiagnostics transforms interpreter diagnostics reported against
// file into LSP diagnostics. Diagnostics of other files are dropped.
func ConvertDiagnostics(diags []errors.Diagnostic, file string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	for _, d := range diags {
		if filepath.Clean(d.File) != filepath.Clean(file) {
			continue
		}

		length := d.Length
		if length <= 0 {
			length = 1
		}
		message := d.Message
		if len(d.Suggestions) > 0 {
			message += " (" + d.Suggestions[0].Message + ")"
		}
		if len(d.Notes) > 0 {
			message += "\n" + strings.Join(d.Notes, "\n")
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(d.Position.Line - 1),   // Convert to 0-based indexing
					Character: uint32(d.Position.Column - 1), // Convert to 0-based indexing
				},
				End: protocol.Position{
					Line:      uint32(d.Position.Line - 1),
					Character: uint32(d.Position.Column - 1 + length),
				},
			},
			Severity: ptrSeverity(severity(d.Level)),
			Code:     &protocol.IntegerOrString{Value: d.Code},
			Source:   ptrString("ysr"),
			Message:  message,
		})
	}

	return diagnostics
}

func severity(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Note:
		return protocol.DiagnosticSeverityInformation
	case errors.Help:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}
