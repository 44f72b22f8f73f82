// Package artifact stores a parsed lexicon in a compact binary file.
//
// Layout: the 8-byte magic "LEXICON\x00", one format version byte, then a
// zstd stream holding the msgpack encoding of the lexicon.
package artifact

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/lexicon"
)

// FormatVersion is the current artifact format version.
const FormatVersion byte = 1

// Extension is the file extension used for artifacts.
const Extension = ".bin"

var magic = []byte("LEXICON\x00")

// Encode writes lex to w.
func Encode(w io.Writer, lex *lexicon.Lexicon) error {
	if lex == nil {
		return errors.NewInvalidRequest("lexicon is required")
	}
	if _, err := w.Write(magic); err != nil {
		return errors.NewInternal(err)
	}
	if _, err := w.Write([]byte{FormatVersion}); err != nil {
		return errors.NewInternal(err)
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return errors.NewInternal(fmt.Errorf("create zstd writer: %w", err))
	}

	enc := msgpack.NewEncoder(zw)
	enc.UseCompactInts(true)
	if err := enc.Encode(lex); err != nil {
		zw.Close()
		return errors.NewInternal(fmt.Errorf("encode lexicon: %w", err))
	}
	if err := zw.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("flush zstd stream: %w", err))
	}
	return nil
}

// Marshal returns the artifact bytes for lex.
func Marshal(lex *lexicon.Lexicon) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, lex); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads an artifact from r.
func Decode(r io.Reader) (*lexicon.Lexicon, error) {
	br := bufio.NewReader(r)

	head := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, errors.NewArtifactInvalid("truncated header")
	}
	if !bytes.Equal(head[:len(magic)], magic) {
		return nil, errors.NewArtifactInvalid("bad magic")
	}
	if v := head[len(magic)]; v != FormatVersion {
		return nil, errors.NewArtifactInvalid(fmt.Sprintf("unsupported format version %d", v))
	}

	zr, err := zstd.NewReader(br)
	if err != nil {
		return nil, errors.NewArtifactInvalid(err.Error())
	}
	defer zr.Close()

	var lex lexicon.Lexicon
	if err := msgpack.NewDecoder(zr).Decode(&lex); err != nil {
		return nil, errors.NewArtifactInvalid(err.Error())
	}
	return &lex, nil
}

// Unmarshal decodes artifact bytes.
func Unmarshal(data []byte) (*lexicon.Lexicon, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile decodes the artifact stored at path.
func ReadFile(path string) (*lexicon.Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("artifact not found: %s", path))
		}
		return nil, errors.NewInternal(fmt.Errorf("open artifact: %w", err))
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile encodes lex to path. The artifact is written to a temp file
// first and renamed into place, so an existing file survives a failed write.
// It returns the number of bytes written.
func WriteFile(path string, lex *lexicon.Lexicon) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to create artifact directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to create artifact file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	cw := &countingWriter{w: file}
	if err := Encode(cw, lex); err != nil {
		return 0, err
	}
	if err := file.Sync(); err != nil {
		return 0, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to close artifact file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return 0, errors.NewInvalidRequest("artifact path is a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return 0, errors.NewInvalidRequest("artifact destination already exists; overwriting is not supported on Windows")
			}
		}
		return 0, errors.NewInternal(fmt.Errorf("failed to finalize artifact: %w", err))
	}

	success = true
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
