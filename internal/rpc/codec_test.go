package rpc

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func TestReaderDecodesSingleFrame(t *testing.T) {
	reader := NewReader(strings.NewReader(frame(`{"id":1,"method":"initialize","params":{}}`)))

	msg, err := reader.Next()
	require.NoError(t, err)
	require.NotNil(t, msg.ID)
	assert.Equal(t, int64(1), *msg.ID)
	assert.Equal(t, "initialize", msg.Method)
	assert.True(t, msg.IsRequest())
	assert.False(t, msg.IsNotification())
}

func TestReaderDecodesNotification(t *testing.T) {
	reader := NewReader(strings.NewReader(frame(`{"method":"initialized"}`)))

	msg, err := reader.Next()
	require.NoError(t, err)
	assert.Nil(t, msg.ID)
	assert.True(t, msg.IsNotification())
}

func TestReaderSkipsWhitespaceBeforeBody(t *testing.T) {
	// Some clients insert stray \r\n sequences between messages. The skipped
	// bytes must not count toward the body length.
	body := `{"method":"initialized"}`
	input := fmt.Sprintf("Content-Length: %d\r\n\r\n\r\n  %s", len(body), body)

	reader := NewReader(strings.NewReader(input))
	msg, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "initialized", msg.Method)
}

func TestReaderContentLengthPersistsAcrossFrames(t *testing.T) {
	// A frame whose headers omit Content-Length reuses the last value seen
	// on the stream.
	first := `{"method":"one/one"}`
	second := `{"method":"two/two"}`
	require.Equal(t, len(first), len(second))

	input := frame(first) + "\r\n" + second
	reader := NewReader(strings.NewReader(input))

	msg, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "one/one", msg.Method)

	msg, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "two/two", msg.Method)
}

func TestReaderIgnoresOtherHeaders(t *testing.T) {
	body := `{"method":"initialized"}`
	input := fmt.Sprintf("Content-Type: application/vscode-jsonrpc\r\nContent-Length: %d\r\n\r\n%s", len(body), body)

	reader := NewReader(strings.NewReader(input))
	msg, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "initialized", msg.Method)
}

func TestReaderLastContentLengthWins(t *testing.T) {
	body := `{"method":"initialized"}`
	input := fmt.Sprintf("Content-Length: 9999\r\nContent-Length: %d\r\n\r\n%s", len(body), body)

	reader := NewReader(strings.NewReader(input))
	msg, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "initialized", msg.Method)
}

func TestReaderEndOfStreamMidHeader(t *testing.T) {
	reader := NewReader(strings.NewReader("Content-Le"))

	_, err := reader.Next()
	assert.True(t, errors.Is(err, ErrEndOfStream))
}

func TestReaderEndOfStreamMidBody(t *testing.T) {
	reader := NewReader(strings.NewReader("Content-Length: 50\r\n\r\n{\"id\":"))

	_, err := reader.Next()
	assert.True(t, errors.Is(err, ErrEndOfStream))
}

func TestReaderMalformedBody(t *testing.T) {
	reader := NewReader(strings.NewReader(frame("this is not json{{{{{{{{")))

	_, err := reader.Next()
	assert.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestReaderBodyWithoutContentLength(t *testing.T) {
	reader := NewReader(strings.NewReader("\r\n{\"method\":\"initialized\"}"))

	_, err := reader.Next()
	assert.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	body := []byte(`{"jsonrpc":"2.0","id":42,"result":null}`)
	require.NoError(t, writer.WriteFrame(body))
	assert.Equal(t, fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body), buf.String())

	reader := NewReader(&buf)
	raw, err := reader.nextToken()
	require.NoError(t, err)
	assert.Equal(t, body, raw)
}

func TestWriterSequentialFrames(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	require.NoError(t, writer.WriteFrame([]byte(`{"method":"a"}`)))
	require.NoError(t, writer.WriteFrame([]byte(`{"method":"b"}`)))

	reader := NewReader(&buf)
	msg, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", msg.Method)

	msg, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", msg.Method)

	_, err = reader.Next()
	assert.True(t, errors.Is(err, ErrEndOfStream))
}
