package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/resourcemap/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph tree to pretty-printed JSON bytes.
func MarshalGraph(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(root, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph tree as JSON to an io.Writer.
func WriteGraph(root *Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a graph tree to a JSON file.
func WriteGraphFile(root *Node, path string) error {
	data, err := MarshalGraph(root)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// UnmarshalGraph decodes JSON bytes into a validated graph tree.
func UnmarshalGraph(data []byte) (*Node, error) {
	return ReadGraph(bytes.NewReader(data))
}

// ReadGraph decodes a JSON graph from an io.Reader, assigns missing edge ids
// and validates the result.
func ReadGraph(r io.Reader) (*Node, error) {
	var root Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	EnsureEdgeIDs(&root)
	if err := Validate(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// ReadGraphFile reads a JSON file and returns the decoded graph tree.
func ReadGraphFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// =============================================================================
// Result Serialization API
// =============================================================================

// MarshalResult serializes a Result to pretty-printed JSON bytes.
func MarshalResult(r Result) ([]byte, error) {
	if r.Nodes == nil {
		r.Nodes = []RenderNode{}
	}
	if r.Edges == nil {
		r.Edges = []RenderEdge{}
	}
	return json.MarshalIndent(r, "", "  ")
}

// UnmarshalResult deserializes JSON bytes into a Result.
// Every ParentID must reference a node that appears earlier in the list.
func UnmarshalResult(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("unmarshal result: %w", err)
	}
	if r.Nodes == nil {
		r.Nodes = []RenderNode{}
	}
	if r.Edges == nil {
		r.Edges = []RenderEdge{}
	}
	seen := make(map[string]bool, len(r.Nodes))
	for _, n := range r.Nodes {
		if n.ParentID != "" && !seen[n.ParentID] {
			return Result{}, fmt.Errorf("node %q references parent %q before it is defined", n.ID, n.ParentID)
		}
		seen[n.ID] = true
	}
	return r, nil
}

// WriteResultFile writes a Result to a JSON file.
func WriteResultFile(r Result, path string) error {
	data, err := MarshalResult(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadResultFile reads a Result from a JSON file.
func ReadResultFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalResult(data)
}
