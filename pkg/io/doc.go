// Package io provides JSON import and export for kolam designs.
//
// # Overview
//
// This package serializes generated designs to and from a simple JSON
// format. The format is designed for:
//
//   - Re-rendering a design later with different themes or dimensions
//   - Integration with external tools that consume the dot/curve geometry
//   - Round-trip preservation: export, re-import, and render identically
//
// # JSON Format
//
//	{
//	  "id": "kolam-7x7",
//	  "name": "Kolam 7x7",
//	  "dots": [{"id": "dot-0-0", "center": {"x": 60, "y": 60}, "radius": 3}],
//	  "curves": [{"id": "curve-0-0", "points": [{"x": 45, "y": 60}, ...]}],
//	  "width": 480,
//	  "height": 480,
//	  "matrix": [[1, 2], [3, 4]]
//	}
//
// The matrix carries the pattern id per grid cell (1-16, 0 for empty);
// dots and curves are the derived geometry in design units.
//
// # Import
//
// Use [ImportJSON] to read a design from a file path, or [ReadJSON] to
// read from any io.Reader. Both validate the structure: the matrix must
// be square with pattern ids in range, and every curve needs at least
// two points.
//
// # Export
//
// Use [ExportJSON] to write a design to a file, or [WriteJSON] to write
// to any io.Writer. The export preserves everything needed for a
// faithful re-render.
package io
