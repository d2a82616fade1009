package dictfile

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"cjd/internal/errors"
	"cjd/internal/normalize"
)

// EncodeDocument renders entries in the persisted layout without touching
// the filesystem. The empty document encodes as "[\n]".
func EncodeDocument(entries []normalize.Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[\n")

	for i, entry := range entries {
		line, err := entry.MarshalJSON()
		if err != nil {
			return nil, errors.NewIOError(fmt.Sprintf("cannot encode entry %q", entry.Key), err)
		}
		buf.Write(line)
		if i < len(entries)-1 {
			buf.WriteString(",\n")
		} else {
			buf.WriteString("\n")
		}
	}

	buf.WriteString("]")
	return buf.Bytes(), nil
}

// Write persists entries to path in the layout contract. Paths ending in
// .gz are gzip-compressed. On failure the caller still holds the
// in-memory result; nothing is partially written by this function beyond
// what the OS write leaves behind.
func Write(path string, entries []normalize.Entry) error {
	data, err := EncodeDocument(entries)
	if err != nil {
		return err
	}

	if strings.HasSuffix(path, ".gz") {
		data, err = gzipBytes(data)
		if err != nil {
			return errors.NewIOError(fmt.Sprintf("cannot compress %s", path), err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIOError(fmt.Sprintf("cannot write %s", path), err)
	}

	return nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
