// Package ipc carries dataview documents between processes over a local
// Unix socket. Each message is one TOML document followed by a NUL byte.
package ipc

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"dataviewer/pkg/dataview"
)

// Delimiter terminates every message on the wire.
const Delimiter byte = 0

// ErrTruncated is returned by Next when the stream ends inside a message.
var ErrTruncated = errors.New("ipc: stream ended inside a message")

// Decoder splits a stream into messages.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the raw bytes of the next message, without the delimiter.
// It returns io.EOF at a clean end of stream.
func (d *Decoder) Next() ([]byte, error) {
	msg, err := d.r.ReadBytes(Delimiter)
	if err != nil {
		if errors.Is(err, io.EOF) && len(bytes.TrimSpace(msg)) > 0 {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return msg[:len(msg)-1], nil
}

// Decode reads and parses the next message.
func (d *Decoder) Decode() (*dataview.File, error) {
	msg, err := d.Next()
	if err != nil {
		return nil, err
	}
	return dataview.Unmarshal(msg)
}

// WriteMessage writes f as one framed message.
func WriteMessage(w io.Writer, f *dataview.File) error {
	data, err := dataview.Marshal(f)
	if err != nil {
		return err
	}
	if bytes.IndexByte(data, Delimiter) >= 0 {
		return errors.New("ipc: document contains a NUL byte")
	}
	_, err = w.Write(append(data, Delimiter))
	return err
}
