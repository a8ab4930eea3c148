// Package lsp serves the symbol index over the Language Server Protocol on a
// pair of streams, usually stdin and stdout.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"llvmls/internal/modelcache"
	"llvmls/internal/source"
	"llvmls/internal/symbols"
	"llvmls/internal/trace"
	"llvmls/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures the server. Zero values are usable.
type ServerOptions struct {
	Cache  *modelcache.Cache
	Tracer trace.Tracer
	Log    io.Writer // protocol problems; defaults to stderr
}

// openDoc is an editor buffer.
type openDoc struct {
	clientVersion int
	doc           *source.Document
}

// Server handles stdio JSON-RPC for llvmls.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	log    io.Writer
	sendMu sync.Mutex
	mu     sync.Mutex

	docs              map[string]*openDoc
	stamp             int // document version for the cache, bumped on every edit
	cache             *modelcache.Cache
	tracer            trace.Tracer
	shutdownRequested bool
	traceLSP          bool
	baseCtx           context.Context
	reqCtx            context.Context // baseCtx plus the span of the message being handled
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	cache := opts.Cache
	if cache == nil {
		cache = modelcache.New(16)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stderr
	}
	return &Server{
		in:      bufio.NewReader(in),
		out:     bufio.NewWriter(out),
		log:     logw,
		docs:    make(map[string]*openDoc),
		cache:   cache,
		tracer:  tracer,
		baseCtx: context.Background(),
		reqCtx:  context.Background(),
	}
}

// Run serves requests until "exit" or the end of input. It returns ErrExit
// after a clean shutdown and ErrExitWithoutShutdown otherwise.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = trace.WithTracer(ctx, s.tracer)
	s.reqCtx = s.baseCtx
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		span := trace.Begin(s.tracer, trace.ScopeServer, msg.Method, trace.ParentFromContext(ctx))
		s.reqCtx = trace.WithSpan(s.baseCtx, span)
		err = s.handleMessage(&msg)
		s.reqCtx = s.baseCtx
		span.End("")
		if err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	if s.currentTrace() {
		s.logf("<- %s", msg.Method)
	}
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/references":
		return s.handleReferences(msg)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	s.applySettings(params.InitializationOptions)

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    syncIncremental,
				Save:      saveOptions{IncludeText: true},
			},
			DefinitionProvider:   true,
			ReferencesProvider:   true,
			FoldingRangeProvider: true,
		},
		ServerInfo: serverInfo{Name: "llvmls", Version: version.Version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	for uri := range s.docs {
		s.cache.Evict(uri)
	}
	s.docs = make(map[string]*openDoc)
	s.mu.Unlock()
	return s.sendResponse(msg.ID, nil)
}

// decodeNotification reports malformed notification params without
// stopping the server.
func (s *Server) decodeNotification(msg *rpcMessage, v any) bool {
	if err := json.Unmarshal(msg.Params, v); err != nil {
		s.logf("%s: invalid params: %v", msg.Method, err)
		trace.Errorf(s.tracer, msg.Method, "invalid params: %v", err)
		return false
	}
	return true
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if !s.decodeNotification(msg, &params) {
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.setTextLocked(uri, params.TextDocument.Version, params.TextDocument.Text)
	s.mu.Unlock()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if !s.decodeNotification(msg, &params) {
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	text := ""
	if od, ok := s.docs[uri]; ok {
		text = string(od.doc.Content())
	}
	text = applyChanges(text, params.ContentChanges)
	s.setTextLocked(uri, params.TextDocument.Version, text)
	traceOn := s.traceLSP
	stamp := s.stamp
	s.mu.Unlock()
	if traceOn {
		s.logf("didChange: uri=%s version=%d stamp=%d", uri, params.TextDocument.Version, stamp)
	}
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if !s.decodeNotification(msg, &params) {
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" || params.Text == nil {
		return nil
	}
	s.mu.Lock()
	clientVersion := 0
	if od, ok := s.docs[uri]; ok {
		if string(od.doc.Content()) == *params.Text {
			s.mu.Unlock()
			return nil
		}
		clientVersion = od.clientVersion
	}
	s.setTextLocked(uri, clientVersion, *params.Text)
	s.mu.Unlock()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if !s.decodeNotification(msg, &params) {
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
	s.cache.Evict(uri)
	return nil
}

// setTextLocked installs a new buffer for uri. Callers hold s.mu.
func (s *Server) setTextLocked(uri string, clientVersion int, text string) {
	s.stamp++
	s.docs[uri] = &openDoc{
		clientVersion: clientVersion,
		doc:           source.NewDocument(uri, s.stamp, text),
	}
}

// modelFor returns the open document for uri and its model.
func (s *Server) modelFor(uri string) (*source.Document, *symbols.Model, bool) {
	uri = canonicalURI(uri)
	s.mu.Lock()
	od, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return nil, nil, false
	}
	return od.doc, s.cache.Get(s.reqCtx, od.doc), true
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.log, "lsp: "+format+"\n", args...)
}
