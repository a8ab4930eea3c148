package lsp

import (
	"encoding/json"

	"llvmls/internal/query"
	"llvmls/internal/source"
	"llvmls/internal/symbols"
)

func (s *Server) handleReferences(msg *rpcMessage) error {
	var params referenceParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc, model, ok := s.modelFor(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []location{})
	}
	return s.sendResponse(msg.ID, buildReferences(model, doc, params.Position))
}

// buildReferences returns use sites only; the definition is not a use, so
// includeDeclaration has no effect.
func buildReferences(model *symbols.Model, doc *source.Document, pos position) []location {
	ranges := query.References(model, doc, toSourcePosition(doc, pos))
	out := make([]location, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, location{URI: doc.URI(), Range: toLSPRange(doc, r)})
	}
	return out
}
