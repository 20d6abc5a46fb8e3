package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// CompressionThreshold is the payload size above which messages are
// gzip-compressed before they are written to the channel.
const CompressionThreshold = 4 * 1024

// PackPayload stores raw payload bytes in the message, compressing them when
// they exceed the threshold. A compressed payload is carried as a base64
// JSON string and flagged so the receiver can unpack it.
func PackPayload(msg *Message, raw []byte) error {
	if len(raw) <= CompressionThreshold {
		msg.Payload = json.RawMessage(raw)
		msg.Compressed = false
		return nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return fmt.Errorf("compressing payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing payload: %w", err)
	}

	encoded, err := json.Marshal(base64.StdEncoding.EncodeToString(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("encoding compressed payload: %w", err)
	}

	msg.Payload = json.RawMessage(encoded)
	msg.Compressed = true
	return nil
}

// UnpackPayload returns the message's raw payload bytes, transparently
// decompressing flagged payloads.
func UnpackPayload(msg Message) ([]byte, error) {
	if !msg.Compressed {
		return []byte(msg.Payload), nil
	}

	var encoded string
	if err := json.Unmarshal(msg.Payload, &encoded); err != nil {
		return nil, fmt.Errorf("decoding compressed payload: %w", err)
	}

	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding compressed payload: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	return raw, nil
}
