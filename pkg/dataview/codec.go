package dataview

import (
	"bytes"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Read decodes a document from r. On failure nothing is returned, so callers
// never observe a partially decoded document.
func Read(r io.Reader) (*File, error) {
	f := NewFile()
	if _, err := toml.NewDecoder(r).Decode(f); err != nil {
		return nil, parseError(err)
	}
	f.Normalize()
	return f, nil
}

// Unmarshal decodes a document from data.
func Unmarshal(data []byte) (*File, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes f as TOML.
func Write(w io.Writer, f *File) error {
	return toml.NewEncoder(w).Encode(f)
}

// Marshal encodes f as TOML.
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads the document stored at path.
func Load(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, IOError("open", path, err)
	}
	defer file.Close()
	return Read(file)
}

// Save writes f to path, replacing any existing file.
func Save(path string, f *File) error {
	file, err := os.Create(path)
	if err != nil {
		return IOError("create", path, err)
	}
	if err := Write(file, f); err != nil {
		file.Close()
		return IOError("write", path, err)
	}
	if err := file.Close(); err != nil {
		return IOError("write", path, err)
	}
	return nil
}
