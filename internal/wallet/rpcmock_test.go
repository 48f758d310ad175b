package wallet_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// rpcError is a scripted JSON-RPC error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return e.Message }

// nodeHandler answers one JSON-RPC method.
type nodeHandler func(params []json.RawMessage) (any, error)

// mockNode is a JSON-RPC test server keyed by method name. Unknown methods
// return -32601. Handlers may be swapped while the server runs.
type mockNode struct {
	*httptest.Server
	mu       sync.Mutex
	handlers map[string]nodeHandler
	calls    map[string]int
	down     bool
}

func newMockNode(t *testing.T, handlers map[string]nodeHandler) *mockNode {
	t.Helper()
	n := &mockNode{handlers: handlers, calls: make(map[string]int)}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.Close)
	return n
}

func (n *mockNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	down := n.down
	h, ok := n.handlers[req.Method]
	n.calls[req.Method]++
	n.mu.Unlock()

	if down {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		resp["error"] = &rpcError{Code: -32601, Message: "method not found"}
	} else if result, err := h(req.Params); err != nil {
		if re, isRPC := err.(*rpcError); isRPC {
			resp["error"] = re
		} else {
			resp["error"] = &rpcError{Code: -32000, Message: err.Error()}
		}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (n *mockNode) set(method string, h nodeHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

func (n *mockNode) setDown(down bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.down = down
}

func (n *mockNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func fixed(v any) nodeHandler {
	return func([]json.RawMessage) (any, error) { return v, nil }
}
