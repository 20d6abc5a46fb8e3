package wire

import (
	"bufio"
	"encoding/json"
	"io"
)

// Each message travels as one JSON value terminated by a single '\n'.
// Encoders must escape embedded newlines inside string literals; prettified
// JSON with raw newlines is not supported on the wire.

// EncodeRequest encodes a request as a newline-terminated JSON line
func EncodeRequest(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// EncodeResponse encodes a response as a newline-terminated JSON line
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeResponse decodes one line's bytes into a response. The trailing
// newline, if present, is tolerated.
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// DecodeRequest decodes one line's bytes into a request
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// LineReader reads newline-terminated messages from a stream
type LineReader struct {
	reader *bufio.Reader
}

// NewLineReader creates a line reader over r
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// ReadLine reads up to and including the next '\n' and returns the line
// without its terminator. A final unterminated line before EOF is returned
// with a nil error; the next call reports io.EOF. An EOF with no buffered
// bytes is returned as io.EOF so callers can distinguish "peer exited" from
// a short read.
func (l *LineReader) ReadLine() ([]byte, error) {
	line, err := l.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return line, nil
		}
		return nil, err
	}
	return line[:len(line)-1], nil
}
