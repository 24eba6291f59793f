package rpc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestRespondRendersAbsentResultAsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, respond(NewWriter(&buf), 3, nil))

	assert.Equal(t, frame(`{"jsonrpc":"2.0","id":3,"result":null}`), buf.String())
}

func TestRespondWithResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, respond(NewWriter(&buf), 1, map[string]any{"ok": true}))

	body := gjson.Parse(string(decodeOneBody(t, &buf)))
	assert.Equal(t, int64(1), body.Get("id").Int())
	assert.True(t, body.Get("result.ok").Bool())
}

func TestRespondErrorCarriesCodeAndMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, respondError(NewWriter(&buf), 9, &ResponseError{
		Code:    CodeInternalError,
		Message: "boom",
	}))

	body := gjson.Parse(string(decodeOneBody(t, &buf)))
	assert.Equal(t, int64(9), body.Get("id").Int())
	assert.Equal(t, int64(CodeInternalError), body.Get("error.code").Int())
	assert.Equal(t, "boom", body.Get("error.message").String())
	assert.False(t, body.Get("result").Exists())
}

func TestNotifyRendersAbsentParamsAsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, notify(NewWriter(&buf), "custom/thing", nil))

	assert.Equal(t, frame(`{"jsonrpc":"2.0","method":"custom/thing","params":null}`), buf.String())
}

func TestClientPublishDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	client := newRemoteClient(NewWriter(&buf), commonlog.GetLogger("test"))

	client.PublishDiagnostics(&protocol.PublishDiagnosticsParams{
		URI:         "file:///a.java",
		Diagnostics: []protocol.Diagnostic{},
	})

	body := gjson.Parse(string(decodeOneBody(t, &buf)))
	assert.Equal(t, "textDocument/publishDiagnostics", body.Get("method").String())
	assert.Equal(t, "file:///a.java", body.Get("params.uri").String())
}

func TestClientRegisterCapabilityGeneratesUniqueIDs(t *testing.T) {
	var buf bytes.Buffer
	client := newRemoteClient(NewWriter(&buf), commonlog.GetLogger("test"))

	client.RegisterCapability("workspace/didChangeWatchedFiles", map[string]any{
		"watchers": []map[string]any{{"globPattern": "**/*.java"}},
	})
	client.RegisterCapability("workspace/didChangeWatchedFiles", nil)

	reader := NewReader(&buf)
	first, err := reader.Next()
	require.NoError(t, err)
	second, err := reader.Next()
	require.NoError(t, err)

	assert.Equal(t, "client/registerCapability", first.Method)

	firstID := gjson.GetBytes(first.Params, "registrations.0.id").String()
	secondID := gjson.GetBytes(second.Params, "registrations.0.id").String()
	assert.NotEmpty(t, firstID)
	assert.NotEmpty(t, secondID)
	assert.NotEqual(t, firstID, secondID)

	method := gjson.GetBytes(first.Params, "registrations.0.method").String()
	assert.Equal(t, "workspace/didChangeWatchedFiles", method)
}

func decodeOneBody(t *testing.T, buf *bytes.Buffer) []byte {
	t.Helper()
	raw, err := NewReader(buf).nextToken()
	require.NoError(t, err)
	return raw
}
