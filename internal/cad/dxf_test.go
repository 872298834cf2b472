package cad

import (
	"bufio"
	"strconv"
	"strings"
	"testing"
)

type dxfPair struct {
	code  string
	value string
}

// parseDXF splits DXF text into group code/value pairs.
func parseDXF(t *testing.T, data []byte) []dxfPair {
	t.Helper()
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if len(lines)%2 != 0 {
		t.Fatalf("odd number of lines: %d", len(lines))
	}
	pairs := make([]dxfPair, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		pairs = append(pairs, dxfPair{code: lines[i], value: lines[i+1]})
	}
	return pairs
}

func countEntities(pairs []dxfPair, name string) int {
	n := 0
	for _, p := range pairs {
		if p.code == "0" && p.value == name {
			n++
		}
	}
	return n
}

// groupAfter returns the value of the first group with code that follows the
// entity at pairs[i], or "" when the entity ends first.
func groupAfter(pairs []dxfPair, i int, code string) string {
	for _, q := range pairs[i+1:] {
		if q.code == "0" {
			return ""
		}
		if q.code == code {
			return q.value
		}
	}
	return ""
}

func TestDXFEncoder_Structure(t *testing.T) {
	d := NewDrawing(NewDXFEncoder())
	d.AppendPolyline([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, true)
	d.AppendPolyline([]Point{{0, 0}, {5, 5}, {9, 1}}, false)
	d.AppendText("DETAIL A", Point{2, 3}, 1.5)

	data, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	pairs := parseDXF(t, data)

	if pairs[0] != (dxfPair{"0", "SECTION"}) {
		t.Errorf("unexpected start: %v", pairs[0])
	}
	if last := pairs[len(pairs)-1]; last != (dxfPair{"0", "EOF"}) {
		t.Errorf("last pair: got %v, want EOF", last)
	}

	if got := countEntities(pairs, "POLYLINE"); got != 2 {
		t.Errorf("polylines: got %d, want 2", got)
	}
	if got := countEntities(pairs, "VERTEX"); got != 7 {
		t.Errorf("vertices: got %d, want 7", got)
	}
	if got := countEntities(pairs, "SEQEND"); got != 2 {
		t.Errorf("seqends: got %d, want 2", got)
	}
	if got := countEntities(pairs, "TEXT"); got != 1 {
		t.Errorf("texts: got %d, want 1", got)
	}

	layers := map[string]bool{}
	for i, p := range pairs {
		if p.code == "0" && p.value == "LAYER" {
			layers[groupAfter(pairs, i, "2")] = true
		}
	}
	if !layers[LayerTrace] || !layers[LayerText] {
		t.Errorf("layer table: got %v, want %s and %s", layers, LayerTrace, LayerText)
	}

	for i, p := range pairs {
		if p.code != "0" {
			continue
		}
		switch p.value {
		case "POLYLINE":
			if got := groupAfter(pairs, i, "8"); got != LayerTrace {
				t.Errorf("polyline layer: got %q, want %q", got, LayerTrace)
			}
		case "TEXT":
			if got := groupAfter(pairs, i, "8"); got != LayerText {
				t.Errorf("text layer: got %q, want %q", got, LayerText)
			}
			if got := groupAfter(pairs, i, "1"); got != "DETAIL A" {
				t.Errorf("text value: got %q", got)
			}
			h, err := strconv.ParseFloat(groupAfter(pairs, i, "40"), 64)
			if err != nil || h != 1.5 {
				t.Errorf("text height: got %v (%v), want 1.5", h, err)
			}
		}
	}
}

func TestDXFEncoder_ClosedFlag(t *testing.T) {
	d := NewDrawing(NewDXFEncoder())
	d.AppendPolyline([]Point{{0, 0}, {1, 0}, {1, 1}}, true)
	d.AppendPolyline([]Point{{0, 0}, {1, 0}, {1, 1}}, false)
	data, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	pairs := parseDXF(t, data)

	var closed []bool
	for i, p := range pairs {
		if p.code == "0" && p.value == "POLYLINE" {
			flag, err := strconv.Atoi(groupAfter(pairs, i, "70"))
			if err != nil {
				t.Fatalf("polyline flag: %v", err)
			}
			closed = append(closed, flag&1 == 1)
		}
	}
	if len(closed) != 2 || !closed[0] || closed[1] {
		t.Errorf("closed flags: got %v, want [true false]", closed)
	}
}

func TestDXFEncoder_Empty(t *testing.T) {
	d := NewDrawing(NewDXFEncoder())
	data, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	pairs := parseDXF(t, data)
	if countEntities(pairs, "POLYLINE") != 0 || countEntities(pairs, "EOF") != 1 {
		t.Error("empty drawing should still be a complete DXF")
	}
}

func TestDXFText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"PLAN", "PLAN"},
		{"two\nlines", "two lines"},
		{"Ø 12", "\\U+00D8 12"},
		{"bell\a", "bell"},
	}
	for _, tt := range tests {
		if got := dxfText(tt.in); got != tt.want {
			t.Errorf("dxfText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
