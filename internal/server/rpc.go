package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	apperrors "github.com/copyleftdev/heuristics/internal/errors"
	"github.com/copyleftdev/heuristics/internal/plan"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeNotFound       = -32001
	codeConflict       = -32002
)

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// handleJSONRPC handles JSON-RPC 2.0 requests. Params may be an object or
// an array whose first element is the object.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || !gjson.ValidBytes(body) {
		s.respondWithError(w, codeParseError, "Parse error", nil, "")
		return
	}
	req := gjson.ParseBytes(body)

	id := json.RawMessage("null")
	if raw := req.Get("id"); raw.Exists() {
		id = json.RawMessage(raw.Raw)
	}
	method := req.Get("method")
	if req.Get("jsonrpc").String() != "2.0" || method.Type != gjson.String {
		s.respondWithError(w, codeInvalidRequest, "Invalid Request", id, "")
		return
	}

	params := req.Get("params")
	if params.IsArray() {
		params = params.Get("0")
	}

	var result interface{}
	switch method.String() {
	case "search.start":
		p := plan.FromJSON(params)
		result, err = s.start(p)
	case "search.status":
		var sid string
		if sid, err = searchID(params); err == nil {
			result, err = s.status(sid)
		}
	case "search.cancel":
		var sid string
		if sid, err = searchID(params); err == nil {
			result, err = s.cancel(sid)
		}
	default:
		s.respondWithError(w, codeMethodNotFound, "Method not found", id, method.String())
		return
	}

	if err != nil {
		code, message := codeServerError, "Server error"
		switch apperrors.KindOf(err) {
		case apperrors.KindInvalid:
			code, message = codeInvalidParams, "Invalid params"
		case apperrors.KindNotFound:
			code, message = codeNotFound, "Not found"
		case apperrors.KindConflict:
			code, message = codeConflict, "Conflict"
		}
		s.respondWithError(w, code, message, id, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id json.RawMessage, data string) {
	s.logger.Warn("RPC error", map[string]interface{}{
		"code":    code,
		"message": message,
		"data":    data,
	})
	if id == nil {
		id = json.RawMessage("null")
	}
	writeJSON(w, http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message, Data: data},
	})
}
