package lsp

import (
	"encoding/json"

	"llvmls/internal/query"
	"llvmls/internal/symbols"
)

func (s *Server) handleFoldingRange(msg *rpcMessage) error {
	var params foldingRangeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	_, model, ok := s.modelFor(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []foldingRange{})
	}
	return s.sendResponse(msg.ID, buildFoldingRanges(model))
}

func buildFoldingRanges(model *symbols.Model) []foldingRange {
	src := query.FoldingRanges(model)
	out := make([]foldingRange, 0, len(src))
	for _, fr := range src {
		out = append(out, foldingRange{
			StartLine: fr.StartLine,
			EndLine:   fr.EndLine,
			Kind:      string(fr.Kind),
		})
	}
	return out
}
