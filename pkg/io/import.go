package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kolamstudio/kolamstudio/pkg/kolam"
)

// ReadJSON decodes a JSON design from r.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - The matrix is not square or holds pattern ids outside 0-16
//   - A curve has fewer than two points
//   - The layout bounds are not positive
//
// The returned design is independent of r and can be modified safely
// after ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*kolam.Design, error) {
	var d kolam.Design
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validate(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ImportJSON reads a JSON file at path and returns the decoded design.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string) (*kolam.Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	d, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func validate(d *kolam.Design) error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("layout bounds must be positive, got %vx%v", d.Width, d.Height)
	}
	n := len(d.Matrix)
	for i, row := range d.Matrix {
		if len(row) != n {
			return fmt.Errorf("matrix row %d: %d cells, want %d", i, len(row), n)
		}
		for j, v := range row {
			if v < 0 || v > 16 {
				return fmt.Errorf("matrix cell (%d,%d): pattern id %d out of range", i, j, v)
			}
		}
	}
	for _, c := range d.Curves {
		if len(c.Points) < 2 {
			return fmt.Errorf("curve %s: needs at least two points", c.ID)
		}
	}
	return nil
}
