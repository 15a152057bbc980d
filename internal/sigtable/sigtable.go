// Package sigtable keeps the wire signatures a generation run declared, so a
// trace decoder can preload them without parsing the generated source.
package sigtable

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"tracegen/internal/project"
)

// SchemaVersion is bumped whenever the encoded layout changes.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned when decoding a table written by another layout.
var ErrSchemaMismatch = errors.New("signature table schema mismatch")

// FunctionSig mirrors trace::FunctionSig.
type FunctionSig struct {
	ID   uint32   `msgpack:"id"`
	Name string   `msgpack:"name"`
	Args []string `msgpack:"args"`
}

// StructSig mirrors trace::StructSig.
type StructSig struct {
	ID      uint32   `msgpack:"id"`
	Name    string   `msgpack:"name"`
	Members []string `msgpack:"members"`
}

// EnumSig mirrors trace::EnumSig. Table groups the constants of one enum.
type EnumSig struct {
	ID    uint32 `msgpack:"id"`
	Table uint32 `msgpack:"table"`
	Name  string `msgpack:"name"`
	Value string `msgpack:"value"`
}

// BitmaskFlag mirrors trace::BitmaskFlag.
type BitmaskFlag struct {
	Name  string `msgpack:"name"`
	Value string `msgpack:"value"`
}

// BitmaskSig mirrors trace::BitmaskSig.
type BitmaskSig struct {
	ID    uint32        `msgpack:"id"`
	Flags []BitmaskFlag `msgpack:"flags"`
}

// Table is the manifest of one generated unit.
type Table struct {
	Schema    uint16         `msgpack:"schema"`
	API       string         `msgpack:"api"`
	Source    project.Digest `msgpack:"source"` // digest of the generated text
	Functions []FunctionSig  `msgpack:"functions"`
	Structs   []StructSig    `msgpack:"structs"`
	Enums     []EnumSig      `msgpack:"enums"`
	Bitmasks  []BitmaskSig   `msgpack:"bitmasks"`
}

// New returns an empty table for api.
func New(api string) *Table {
	return &Table{Schema: SchemaVersion, API: api}
}

// AddFunction records a function or method signature. A nil table ignores it.
func (t *Table) AddFunction(sig FunctionSig) {
	if t != nil {
		t.Functions = append(t.Functions, sig)
	}
}

// AddStruct records a struct signature.
func (t *Table) AddStruct(sig StructSig) {
	if t != nil {
		t.Structs = append(t.Structs, sig)
	}
}

// AddEnum records one enum constant signature.
func (t *Table) AddEnum(sig EnumSig) {
	if t != nil {
		t.Enums = append(t.Enums, sig)
	}
}

// AddBitmask records a bitmask signature.
func (t *Table) AddBitmask(sig BitmaskSig) {
	if t != nil {
		t.Bitmasks = append(t.Bitmasks, sig)
	}
}

// Function looks a function signature up by name.
func (t *Table) Function(name string) (FunctionSig, bool) {
	for _, f := range t.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return FunctionSig{}, false
}

// Encode writes t to w.
func Encode(w io.Writer, t *Table) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode signature table: %w", err)
	}
	return nil
}

// Decode reads a table from r.
func Decode(r io.Reader) (*Table, error) {
	var t Table
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode signature table: %w", err)
	}
	if t.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, t.Schema, SchemaVersion)
	}
	return &t, nil
}

// WriteFile writes t next to the generated source, replacing any previous
// table atomically.
func WriteFile(path string, t *Table) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if err = Encode(f, t); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile loads a table written by WriteFile.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
