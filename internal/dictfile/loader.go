// Package dictfile reads and writes dictionary documents on disk.
// The persisted layout is a contract consumers rely on: opening bracket on
// its own line, one compact JSON object per line with ",\n" separators, a
// final LF before the closing bracket, no trailing newline, and raw
// non-ASCII output.
package dictfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"cjd/internal/errors"
)

// Load reads a whole dictionary document, transparently decompressing gzip
// content, and decodes the JSON with number fidelity preserved.
// Read and decode failures are IO errors; shape is validated later by the
// normalizer.
func Load(path string) (interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("cannot read %s", path), err)
	}

	data, err := maybeGunzip(raw)
	if err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("cannot decompress %s", path), err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("cannot parse %s", path), err)
	}

	// Reject trailing content after the document
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.NewIOError(fmt.Sprintf("trailing data after JSON document in %s", path), nil)
	}

	return value, nil
}

// maybeGunzip decompresses raw content when it carries the gzip magic bytes
func maybeGunzip(raw []byte) ([]byte, error) {
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		return raw, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	return io.ReadAll(reader)
}
