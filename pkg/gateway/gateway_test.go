package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthik-ravi-1537/mcp-demo/pkg/calculator"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

func newTestGateway(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	gw, err := NewServer(Config{
		Host:   "localhost",
		Port:   5000,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	calc, err := calculator.New(calculator.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, gw.Mount(calc))

	ts := httptest.NewServer(gw.Handler())
	t.Cleanup(ts.Close)
	return gw, ts
}

func dial(t *testing.T, ts *httptest.Server, serverName string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + serverName
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := protocol.DecodeMessage(data)
	require.NoError(t, err)
	return msg
}

func TestGateway_ToolListOnConnect(t *testing.T) {
	_, ts := newTestGateway(t)
	conn := dial(t, ts, "calculator")

	msg := readMessage(t, conn)
	list, ok := msg.(protocol.ToolList)
	require.True(t, ok, "expected tool_list, got %s", msg.Type())
	assert.Len(t, list.Tools, 10)
	assert.Equal(t, "add", list.Tools[0].Name)
}

func TestGateway_ToolCall(t *testing.T) {
	_, ts := newTestGateway(t)
	conn := dial(t, ts, "calculator")
	readMessage(t, conn) // tool_list

	call := protocol.NewToolCall("add", map[string]interface{}{"a": 2.0, "b": 3.0})
	require.NoError(t, conn.WriteJSON(call))

	msg := readMessage(t, conn)
	result, ok := msg.(protocol.ToolResult)
	require.True(t, ok, "expected tool_result, got %s", msg.Type())
	assert.Equal(t, call.CallID, result.CallID)
	assert.Equal(t, 5.0, result.Result)
}

func TestGateway_UnknownTool(t *testing.T) {
	_, ts := newTestGateway(t)
	conn := dial(t, ts, "calculator")
	readMessage(t, conn) // tool_list

	call := protocol.NewToolCall("frobnicate", nil)
	require.NoError(t, conn.WriteJSON(call))

	msg := readMessage(t, conn)
	toolErr, ok := msg.(protocol.ToolError)
	require.True(t, ok, "expected tool_error, got %s", msg.Type())
	assert.Equal(t, protocol.ErrKindUnknownTool, toolErr.ErrorKind)
	assert.Equal(t, call.CallID, toolErr.CallID)
}

func TestGateway_InvalidMessageIgnored(t *testing.T) {
	_, ts := newTestGateway(t)
	conn := dial(t, ts, "calculator")
	readMessage(t, conn) // tool_list

	// Garbage does not kill the connection.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	call := protocol.NewToolCall("add", map[string]interface{}{"a": 1.0, "b": 1.0})
	require.NoError(t, conn.WriteJSON(call))

	msg := readMessage(t, conn)
	result, ok := msg.(protocol.ToolResult)
	require.True(t, ok)
	assert.Equal(t, 2.0, result.Result)
}

func TestGateway_UnknownServer(t *testing.T) {
	_, ts := newTestGateway(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/nonexistent"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGateway_Healthz(t *testing.T) {
	_, ts := newTestGateway(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var status map[string]string
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, "ok", status["status"])
}

func TestGateway_MountDuplicate(t *testing.T) {
	gw, _ := newTestGateway(t)

	calc, err := calculator.New(calculator.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)

	err = gw.Mount(calc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already mounted")
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(Config{Port: 0})
	assert.Error(t, err)

	_, err = NewServer(Config{Port: -1})
	assert.Error(t, err)
}
