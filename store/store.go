// Package store persists exemplar sets and gesture files as JSON.
//
// An exemplar file holds every registered gesture together with its ID and
// registration time, so a comparator can be rebuilt across process restarts:
//
//	{"version":1,"exemplars":[{"id":"…","added":"…","frames":[[0.1,1.2],…]}]}
//
// A gesture file holds a single representation:
//
//	{"frames":[[0.1,1.2],[0.2,1.1],…]}
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/katalvlaran/gesturematch/comparator"
	"github.com/katalvlaran/gesturematch/gesture"
)

// Version is the exemplar file format version written by Save.
const Version = 1

// ErrVersion indicates an exemplar file written by an unknown format version.
var ErrVersion = errors.New("store: unsupported exemplar file version")

type record struct {
	ID     uuid.UUID   `json:"id"`
	Added  time.Time   `json:"added"`
	Frames [][]float64 `json:"frames"`
}

type document struct {
	Version   int      `json:"version"`
	Exemplars []record `json:"exemplars"`
}

type gestureDoc struct {
	Frames [][]float64 `json:"frames"`
}

func frames(g gesture.Representation) [][]float64 {
	out := make([][]float64, g.Len())
	for t := range out {
		out[t] = g.Frame(t)
	}
	return out
}

// Save writes exemplars to w.
func Save(w io.Writer, exemplars []comparator.Exemplar) error {
	doc := document{Version: Version, Exemplars: make([]record, 0, len(exemplars))}
	for _, e := range exemplars {
		if err := gesture.Validate(e.Gesture); err != nil {
			return fmt.Errorf("store: exemplar %s: %w", e.ID, err)
		}
		doc.Exemplars = append(doc.Exemplars, record{ID: e.ID, Added: e.Added.UTC(), Frames: frames(e.Gesture)})
	}
	b, err := gojson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// Load reads exemplars written by Save.
func Load(r io.Reader) ([]comparator.Exemplar, error) {
	var doc document
	if err := gojson.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("store: decode: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, doc.Version)
	}
	out := make([]comparator.Exemplar, 0, len(doc.Exemplars))
	for i, rec := range doc.Exemplars {
		g, err := gesture.New(rec.Frames)
		if err != nil {
			return nil, fmt.Errorf("store: exemplar %d (%s): %w", i, rec.ID, err)
		}
		out = append(out, comparator.Exemplar{ID: rec.ID, Added: rec.Added, Gesture: g})
	}
	return out, nil
}

// SaveFile writes exemplars to path, replacing it atomically.
func SaveFile(path string, exemplars []comparator.Exemplar) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Save(tmp, exemplars); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile reads exemplars from path. A missing file yields an empty set.
func LoadFile(path string) ([]comparator.Exemplar, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

// LoadInto restores the exemplars stored at path into c and returns how many
// were restored.
func LoadInto(c *comparator.DP, path string) (int, error) {
	exemplars, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	for _, e := range exemplars {
		c.Restore(e)
	}
	return len(exemplars), nil
}

// ReadGesture decodes a single gesture.
func ReadGesture(r io.Reader) (*gesture.Dense, error) {
	var doc gestureDoc
	if err := gojson.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("store: decode gesture: %w", err)
	}
	return gesture.New(doc.Frames)
}

// ReadGestureFile decodes the gesture stored at path.
func ReadGestureFile(path string) (*gesture.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := ReadGesture(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// WriteGesture encodes g.
func WriteGesture(w io.Writer, g gesture.Representation) error {
	if err := gesture.Validate(g); err != nil {
		return err
	}
	b, err := gojson.Marshal(gestureDoc{Frames: frames(g)})
	if err != nil {
		return fmt.Errorf("store: encode gesture: %w", err)
	}
	_, err = w.Write(b)
	return err
}
