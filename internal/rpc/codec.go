package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrEndOfStream reports that the client closed the connection. It is a
	// distinguished condition, not a transport fault: the reader converts it
	// into the queue's closed entry and the dispatcher shuts down cleanly.
	ErrEndOfStream = errors.New("client stream closed")

	// ErrMalformedFrame reports a header or body that could not be decoded.
	// Transport faults are fatal to the reader; no partial-message recovery
	// is attempted.
	ErrMalformedFrame = errors.New("malformed frame")
)

const contentLengthHeader = "Content-Length: "

// Reader decodes Content-Length framed messages from a byte stream, one per
// Next call. The expected body length carries over between calls: a frame
// whose headers omit Content-Length reuses the last value seen on the
// stream. Some clients also insert stray \r\n sequences between messages;
// whitespace before the body is absorbed without counting toward the length.
type Reader struct {
	in *bufio.Reader

	// contentLength persists across frames; -1 until first seen.
	contentLength int
}

// NewReader wraps in for frame decoding.
func NewReader(in io.Reader) *Reader {
	return &Reader{
		in:            bufio.NewReader(in),
		contentLength: -1,
	}
}

// Next reads one complete frame and decodes its body as a Message. It
// returns ErrEndOfStream the moment the underlying stream reports closure,
// whether between frames or mid-read, and ErrMalformedFrame for anything
// that cannot be parsed.
func (r *Reader) Next() (*Message, error) {
	body, err := r.nextToken()
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, errors.Wrapf(ErrMalformedFrame, "decoding body %q: %s", body, err)
	}

	return &msg, nil
}

// nextToken reads header lines until the empty line, then reads the body.
func (r *Reader) nextToken() ([]byte, error) {
	for {
		line, err := r.readHeader()
		if err != nil {
			return nil, err
		}

		// The empty header line marks the start of the body.
		if line == "" {
			return r.readBody(r.contentLength)
		}

		if length, ok := parseHeader(line); ok {
			r.contentLength = length
		}
	}
}

// readHeader reads bytes up to a \r\n terminator.
func (r *Reader) readHeader() (string, error) {
	var line strings.Builder

	for {
		b, err := r.readByte()
		if err != nil {
			return "", err
		}
		if b == '\r' {
			next, err := r.readByte()
			if err != nil {
				return "", err
			}
			if next != '\n' {
				return "", errors.Wrapf(ErrMalformedFrame, "header line %q: expected \\n after \\r, got %q", line.String(), next)
			}
			return line.String(), nil
		}
		line.WriteByte(b)
	}
}

// parseHeader extracts the length from a Content-Length header line. Other
// headers are permitted and ignored.
func parseHeader(line string) (int, bool) {
	tail, found := strings.CutPrefix(line, contentLengthHeader)
	if !found {
		return 0, false
	}
	length := 0
	for _, c := range tail {
		if c < '0' || c > '9' {
			return 0, false
		}
		length = length*10 + int(c-'0')
	}
	return length, true
}

// readBody reads exactly length bytes of body text. Leading whitespace is
// eaten before counting begins and never appears in the result.
func (r *Reader) readBody(length int) ([]byte, error) {
	if length <= 0 {
		return nil, errors.Wrap(ErrMalformedFrame, "no Content-Length header seen before body")
	}

	b, err := r.readByte()
	if err != nil {
		return nil, err
	}
	for b == ' ' || b == '\t' || b == '\r' || b == '\n' {
		b, err = r.readByte()
		if err != nil {
			return nil, err
		}
	}

	body := make([]byte, 0, length)
	for {
		body = append(body, b)
		if len(body) == length {
			return body, nil
		}
		b, err = r.readByte()
		if err != nil {
			return nil, err
		}
	}
}

// readByte maps stream closure onto ErrEndOfStream at any read position.
func (r *Reader) readByte() (byte, error) {
	b, err := r.in.ReadByte()
	if err == io.EOF {
		return 0, ErrEndOfStream
	}
	if err != nil {
		return 0, errors.Wrap(err, "reading from client")
	}
	return b, nil
}

// Writer emits Content-Length framed payloads. The header and body of one
// frame go out as a single locked write sequence so concurrently produced
// messages never interleave on the wire.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter wraps out for frame encoding.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteFrame writes one already-encoded payload with its header.
func (w *Writer) WriteFrame(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	header := fmt.Sprintf("%s%d\r\n\r\n", contentLengthHeader, len(payload))
	if _, err := io.WriteString(w.out, header); err != nil {
		return errors.Wrap(err, "writing frame header")
	}
	if _, err := w.out.Write(payload); err != nil {
		return errors.Wrap(err, "writing frame body")
	}
	return nil
}
