// Package cache implements a ".rpalc" sidecar cache: the Delta forest a
// source file flattens to (control.Symbol, the CSE machine's own input) is
// REZI-encoded and written next to the source file, keyed by a content hash
// of the source text. On a cache hit, rpal.Interpreter's Eval skips lexing,
// parsing, standardizing, and flattening and goes straight to execution,
// the same encode/store/decode role rezi.EncBinary/rezi.DecBinary play for
// the teacher's saved-game blobs. cmd/rpal still calls Interpreter.Parse and
// Interpreter.Standardize on every run before it evaluates, so from the
// command line a hit saves only the front-end work done inside Eval.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/rpal/control"
)

// entry is the on-disk shape of a .rpalc file: the source hash it was built
// from, plus the flattened program itself.
type entry struct {
	SourceHash string
	Delta      *control.Symbol
}

// HashSource returns a stable content hash of RPAL source text, used as the
// cache-validity key (spec-additive: not part of the classical machine).
func HashSource(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// SidecarPath returns the .rpalc path for a given source file path, e.g.
// "fact.rpal" -> "fact.rpalc".
func SidecarPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext) + ".rpalc"
}

// Save writes the flattened program to path, keyed by srcHash.
func Save(path string, srcHash string, delta *control.Symbol) error {
	e := entry{SourceHash: srcHash, Delta: delta}
	data := rezi.EncBinary(&e)
	return os.WriteFile(path, data, 0644)
}

// Load reads a .rpalc file and returns its flattened program if, and only
// if, it was built from source matching srcHash. A missing file or a hash
// mismatch is reported as (nil, false, nil) — a cache miss, not an error;
// only a corrupt/unreadable existing file is an error.
func Load(path string, srcHash string) (*control.Symbol, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var e entry
	n, err := rezi.DecBinary(data, &e)
	if err != nil {
		return nil, false, fmt.Errorf("decode cache file %s: %w", path, err)
	}
	if n != len(data) {
		return nil, false, fmt.Errorf("decode cache file %s: consumed %d/%d bytes", path, n, len(data))
	}

	if e.SourceHash != srcHash {
		return nil, false, nil
	}
	return e.Delta, true, nil
}
