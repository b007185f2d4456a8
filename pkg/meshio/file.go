package meshio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format names a mesh file encoding.
type Format string

const (
	FormatOBJ Format = "obj"
	FormatSTL Format = "stl"
)

// ErrUnknownFormat is returned for encodings other than OBJ and STL.
var ErrUnknownFormat = errors.New("meshio: unknown mesh format")

// ParseFormat maps a name such as "obj" or ".STL" to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(name, "."))); f {
	case FormatOBJ, FormatSTL:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Read decodes a mesh in format f.
func Read(r io.Reader, f Format) (*Mesh, error) {
	switch f {
	case FormatOBJ:
		return ReadOBJ(r)
	case FormatSTL:
		return ReadSTL(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Write encodes m in format f.
func Write(w io.Writer, m *Mesh, f Format) error {
	switch f {
	case FormatOBJ:
		return WriteOBJ(w, m)
	case FormatSTL:
		return WriteSTL(w, m)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// ReadFile loads a mesh, choosing the decoder from the file extension. A
// mesh without a name is named after the file.
func ReadFile(path string) (*Mesh, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// WriteFile writes m to path in format f.
func WriteFile(path string, m *Mesh, f Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	if err := Write(file, m, f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
