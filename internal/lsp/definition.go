package lsp

import (
	"encoding/json"

	"llvmls/internal/query"
	"llvmls/internal/source"
	"llvmls/internal/symbols"
)

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params definitionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc, model, ok := s.modelFor(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []locationLink{})
	}
	return s.sendResponse(msg.ID, buildDefinition(model, doc, params.Position))
}

func buildDefinition(model *symbols.Model, doc *source.Document, pos position) []locationLink {
	link, ok := query.Definition(model, doc, toSourcePosition(doc, pos))
	if !ok {
		return []locationLink{}
	}
	return []locationLink{{
		TargetURI:            doc.URI(),
		TargetRange:          toLSPRange(doc, link.Preview),
		TargetSelectionRange: toLSPRange(doc, link.Target),
	}}
}
