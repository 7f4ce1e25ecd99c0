// Package gopls drives a gopls subprocess over stdio JSON-RPC. Only the
// slice of LSP needed for workspace symbol search is implemented; the
// response payload is handed back raw so the caller can decode either of the
// two symbol shapes the protocol allows.
package gopls

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/codetrellis/implgen/errors"
)

// Client is the symbol-search backend contract. Implemented by StdioClient;
// tests substitute fakes.
type Client interface {
	// Initialize establishes the LSP session with a workspace root
	Initialize(ctx context.Context, workspaceRoot string) error

	// Shutdown gracefully closes the LSP session
	Shutdown(ctx context.Context) error

	// DidOpen notifies the server that a document was opened
	DidOpen(ctx context.Context, uri string, content string) error

	// WorkspaceSymbols runs workspace/symbol and returns the raw result
	WorkspaceSymbols(ctx context.Context, query string) (json.RawMessage, error)
}

// StdioClient implements Client using a gopls child process
type StdioClient struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	nextID   atomic.Int64
	pending  map[int64]chan *jsonrpcResponse
	mu       sync.Mutex
	shutdown bool
}

// jsonrpcRequest represents a JSON-RPC 2.0 request
type jsonrpcRequest struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      int64       `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// jsonrpcResponse represents a JSON-RPC 2.0 response
type jsonrpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      int64           `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

// jsonrpcError represents a JSON-RPC 2.0 error
type jsonrpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewStdioClient spawns the given gopls binary and wires up stdio transport
func NewStdioClient(binary string) (*StdioClient, error) {
	if binary == "" {
		binary = "gopls"
	}
	cmd := exec.Command(binary, "serve")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gopls stdin pipe")
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gopls stdout pipe")
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gopls stderr pipe")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", binary)
	}

	client := &StdioClient{
		cmd:     cmd,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		pending: make(map[int64]chan *jsonrpcResponse),
	}

	// Start reading responses in background
	go client.readLoop()

	// Consume stderr so the child never blocks on a full pipe
	go client.stderrLoop()

	return client, nil
}

// Initialize establishes the LSP session with a workspace root
func (c *StdioClient) Initialize(ctx context.Context, workspaceRoot string) error {
	params := map[string]interface{}{
		"processId": nil,
		"rootUri":   "file://" + workspaceRoot,
		"capabilities": map[string]interface{}{
			"workspace": map[string]interface{}{
				"symbol": map[string]interface{}{
					"symbolKind": map[string]interface{}{},
				},
			},
			"textDocument": map[string]interface{}{
				"documentSymbol": map[string]interface{}{
					"hierarchicalDocumentSymbolSupport": true,
				},
			},
		},
	}

	var result json.RawMessage
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return errors.Wrapf(err, "gopls initialize failed for workspace %s", workspaceRoot)
	}

	if err := c.notify("initialized", map[string]interface{}{}); err != nil {
		return errors.Wrap(err, "gopls initialized notification failed")
	}

	return nil
}

// Shutdown gracefully closes the LSP session
func (c *StdioClient) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()

	if err := c.call(ctx, "shutdown", nil, nil); err != nil {
		return errors.Wrap(err, "gopls shutdown RPC failed")
	}

	if err := c.notify("exit", nil); err != nil {
		return errors.Wrap(err, "gopls exit notification failed")
	}

	if c.stdin != nil {
		c.stdin.Close()
		c.stdin = nil
	}

	// Wait for process exit with the caller's deadline
	done := make(chan error, 1)
	go func() {
		done <- c.cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "gopls process exited with error")
		}
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "timeout waiting for gopls process to exit")
	}
}

// DidOpen notifies the server that a document was opened
func (c *StdioClient) DidOpen(ctx context.Context, uri string, content string) error {
	params := map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":        uri,
			"languageId": "go",
			"version":    1,
			"text":       content,
		},
	}
	return c.notify("textDocument/didOpen", params)
}

// WorkspaceSymbols runs workspace/symbol with the given query. The result is
// returned undecoded: the server is free to answer with a flat
// SymbolInformation list or a hierarchical symbol tree.
func (c *StdioClient) WorkspaceSymbols(ctx context.Context, query string) (json.RawMessage, error) {
	params := map[string]interface{}{
		"query": query,
	}

	var result json.RawMessage
	if err := c.call(ctx, "workspace/symbol", params, &result); err != nil {
		return nil, errors.Wrapf(err, "gopls workspace/symbol %q", query)
	}

	return result, nil
}

// call sends a JSON-RPC request and waits for the response
func (c *StdioClient) call(ctx context.Context, method string, params, result interface{}) error {
	c.mu.Lock()
	if c.shutdown && method != "shutdown" {
		c.mu.Unlock()
		return errors.New("gopls client is shutdown")
	}

	id := c.nextID.Add(1)
	responseChan := make(chan *jsonrpcResponse, 1)
	c.pending[id] = responseChan
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	req := jsonrpcRequest{
		Jsonrpc: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}

	if err := c.writeMessage(req); err != nil {
		return errors.Wrapf(err, "failed to write JSON-RPC request for method %s", method)
	}

	select {
	case resp := <-responseChan:
		if resp.Error != nil {
			return errors.Newf("JSON-RPC error %d on method %s: %s", resp.Error.Code, method, resp.Error.Message)
		}
		if result != nil && resp.Result != nil {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return errors.Wrapf(err, "failed to unmarshal JSON-RPC response for method %s", method)
			}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// notify sends a JSON-RPC notification (no response expected)
func (c *StdioClient) notify(method string, params interface{}) error {
	req := jsonrpcRequest{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
	}
	return c.writeMessage(req)
}

// writeMessage writes a JSON-RPC message with LSP framing headers
func (c *StdioClient) writeMessage(msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON-RPC message")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stdin == nil {
		return errors.New("gopls stdin is closed")
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	if _, err := c.stdin.Write([]byte(header)); err != nil {
		return errors.Wrap(err, "failed to write LSP header")
	}
	if _, err := c.stdin.Write(data); err != nil {
		return errors.Wrap(err, "failed to write LSP message")
	}

	return nil
}

// readLoop continuously reads JSON-RPC responses from gopls
func (c *StdioClient) readLoop() {
	reader := bufio.NewReader(c.stdout)

	for {
		// Read headers until the blank line, remembering Content-Length
		var contentLength int
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}

			line = strings.TrimSpace(line)
			if line == "" {
				break
			}

			fmt.Sscanf(line, "Content-Length: %d", &contentLength)
		}

		if contentLength == 0 {
			continue
		}

		content := make([]byte, contentLength)
		if _, err := io.ReadFull(reader, content); err != nil {
			return
		}

		var resp jsonrpcResponse
		if err := json.Unmarshal(content, &resp); err != nil {
			// Server notifications and malformed frames are skipped
			continue
		}

		c.mu.Lock()
		if ch, ok := c.pending[resp.ID]; ok {
			ch <- &resp
		}
		c.mu.Unlock()
	}
}

// stderrLoop consumes stderr output so gopls never blocks writing it
func (c *StdioClient) stderrLoop() {
	scanner := bufio.NewScanner(c.stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			fmt.Fprintf(os.Stderr, "[gopls stderr] %s\n", line)
		}
	}
}
