package serializer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/loopauth/internal/shared"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"
)

// EntryName is the name of the JSON document inside compressed archives.
const EntryName = "data.json"

var (
	// ErrNilStreamFactory is returned by [New] when no [StreamFactory] is supplied.
	ErrNilStreamFactory = fmt.Errorf("%w: stream factory", shared.ErrNilArgument)
	// ErrEntryNotFound is returned when an archive has no [EntryName] entry.
	ErrEntryNotFound = errors.New("archive entry not found")
)

// Serializer encodes and decodes JSON.
type Serializer struct {
	streams StreamFactory
}

// New creates a Serializer. streams is required.
//
// A nil [*PooledStreamFactory] is rejected as well; other implementations must not be typed nils.
func New(streams StreamFactory) (*Serializer, error) {
	if streams == nil {
		return nil, ErrNilStreamFactory
	}
	if f, ok := streams.(*PooledStreamFactory); ok && f == nil {
		return nil, ErrNilStreamFactory
	}
	return &Serializer{streams: streams}, nil
}

// Serialize encodes v as JSON.
func (s *Serializer) Serialize(v any) ([]byte, error) {
	buf := s.streams.Get()
	defer s.streams.Put(buf)

	if err := s.SerializeTo(buf, v); err != nil {
		return nil, err
	}

	// buf goes back to the pool, so hand out a copy.
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// SerializeTo encodes v as JSON onto w.
func (s *Serializer) SerializeTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// SerializeCompressed writes v as JSON into a zip archive at path.
//
// The archive is written to a temporary file next to path and renamed, so readers never see a partial file.
func (s *Serializer) SerializeCompressed(ctx context.Context, v any, path string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := s.streams.Get()
	defer s.streams.Put(buf)

	if err := s.SerializeTo(buf, v); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	entry, err := zw.CreateHeader(&zip.FileHeader{Name: EntryName, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err = io.Copy(entry, buf); err != nil {
		return fmt.Errorf("failed to write archive entry: %w", err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

// Deserialize decodes JSON data into a T.
func Deserialize[T any](s *Serializer, data []byte) (T, error) {
	return DeserializeReader[T](s, bytes.NewReader(data))
}

// DeserializeString decodes JSON text into a T.
func DeserializeString[T any](s *Serializer, text string) (T, error) {
	return DeserializeReader[T](s, strings.NewReader(text))
}

// DeserializeReader decodes one JSON value from r into a T.
func DeserializeReader[T any](s *Serializer, r io.Reader) (T, error) {
	var v T
	if s == nil {
		return v, fmt.Errorf("%w: serializer", shared.ErrNilArgument)
	}
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return v, nil
}

// DeserializeCompressed reads the archive written by [Serializer.SerializeCompressed] at path into a T.
func DeserializeCompressed[T any](s *Serializer, path string) (T, error) {
	var zero T
	if s == nil {
		return zero, fmt.Errorf("%w: serializer", shared.ErrNilArgument)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != EntryName {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return zero, fmt.Errorf("failed to open archive entry: %w", err)
		}
		defer rc.Close()

		buf := s.streams.Get()
		defer s.streams.Put(buf)
		if _, err := buf.ReadFrom(rc); err != nil {
			return zero, fmt.Errorf("failed to read archive entry: %w", err)
		}
		return DeserializeReader[T](s, buf)
	}

	return zero, fmt.Errorf("%w: %s in %s", ErrEntryNotFound, EntryName, path)
}
