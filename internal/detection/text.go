package detection

import (
	"image"
	"math"
	"sort"
	"strings"

	"github.com/ironsheep/pdf2cad/internal/cad"
	"github.com/ironsheep/pdf2cad/internal/imaging"
	"github.com/ironsheep/pdf2cad/internal/trace"
)

// Annotation is a retained text region in output space.
type Annotation struct {
	Text       string    `json:"text"`
	At         cad.Point `json:"at"` // lower-left corner
	Height     float64   `json:"height"`
	Confidence float64   `json:"confidence"`
}

// Selection is the outcome of filtering one page's regions.
type Selection struct {
	Annotations []Annotation
	// MaskRects are the padded and clipped rectangles to erase.
	MaskRects []image.Rectangle
	// Rejected counts regions below the confidence threshold.
	Rejected int
}

// Select keeps the regions whose confidence is at least threshold.
//
// Kept regions with non-blank text become annotations at their lower-left
// corner: (X1*k, (H-Y2)*k) with height (Y2-Y1)*k, through tr. Every kept
// region, with or without text, contributes its bounds grown by pad pixels
// and clipped to page to the mask. Overlapping rectangles are merged only when
// their union covers nothing else.
// Regions below the threshold appear in neither output.
func Select(regions []Region, threshold float64, pad int, page image.Rectangle, tr trace.Transform) Selection {
	var sel Selection
	var rects []image.Rectangle

	for _, r := range regions {
		if r.Confidence < threshold {
			sel.Rejected++
			continue
		}
		box := r.Bounds.Rect()
		if box.Empty() {
			continue
		}

		if text := strings.TrimSpace(r.Text); text != "" {
			sel.Annotations = append(sel.Annotations, Annotation{
				Text:       text,
				At:         tr.Apply(image.Point{X: box.Min.X, Y: box.Max.Y}),
				Height:     tr.Length(float64(box.Dy())),
				Confidence: r.Confidence,
			})
		}

		if padded := imaging.PadRect(box, pad, page); !padded.Empty() {
			rects = append(rects, padded)
		}
	}

	sel.MaskRects = mergeOverlappingRects(rects)
	return sel
}

// mergeOverlappingRects combines overlapping rectangles whose union covers
// no pixel outside the two of them, such as neighbouring words on one line.
// Other overlaps are kept as separate rectangles so the mask never reaches
// beyond the padded regions.
func mergeOverlappingRects(rects []image.Rectangle) []image.Rectangle {
	if len(rects) == 0 {
		return nil
	}

	merged := append([]image.Rectangle(nil), rects...)
	for {
		changed := false
		out := make([]image.Rectangle, 0, len(merged))
		for _, r := range merged {
			foundMerge := false
			for i := range out {
				if exactUnion(out[i], r) {
					out[i] = out[i].Union(r)
					foundMerge = true
					changed = true
					break
				}
			}
			if !foundMerge {
				out = append(out, r)
			}
		}
		merged = out
		if !changed {
			break
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Min.Y != merged[j].Min.Y {
			return merged[i].Min.Y < merged[j].Min.Y
		}
		return merged[i].Min.X < merged[j].Min.X
	})
	return merged
}

// exactUnion reports whether a and b overlap and their bounding rectangle
// adds no area beyond a and b.
func exactUnion(a, b image.Rectangle) bool {
	if !a.Overlaps(b) {
		return false
	}
	return area(a.Union(b)) == area(a)+area(b)-area(a.Intersect(b))
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// MergeWords joins regions that sit on the same text line with gaps no wider
// than gapFactor times the line height. It is used to turn per-glyph boxes
// into word boxes. Confidence of a merged region is the minimum of its parts.
func MergeWords(regions []Region, gapFactor float64) []Region {
	if len(regions) == 0 {
		return nil
	}
	sorted := append([]Region(nil), regions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Bounds, sorted[j].Bounds
		if !sameLine(a, b) {
			return a.Y1 < b.Y1
		}
		return a.X1 < b.X1
	})

	out := []Region{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		h := float64(maxInt(last.Bounds.Y2-last.Bounds.Y1, r.Bounds.Y2-r.Bounds.Y1))
		gap := float64(r.Bounds.X1 - last.Bounds.X2)
		if sameLine(last.Bounds, r.Bounds) && gap <= gapFactor*h && !strings.HasSuffix(last.Text, " ") && !strings.HasPrefix(r.Text, " ") {
			last.Bounds = mergeBounds(last.Bounds, r.Bounds)
			last.Text += r.Text
			last.Confidence = math.Min(last.Confidence, r.Confidence)
			continue
		}
		out = append(out, r)
	}

	// Drop whitespace-only words left behind by explicit spaces.
	words := out[:0]
	for _, r := range out {
		r.Text = strings.TrimSpace(r.Text)
		if r.Text != "" {
			words = append(words, r)
		}
	}
	return words
}

// sameLine reports whether two boxes share most of their vertical extent.
func sameLine(a, b Bounds) bool {
	overlap := minInt(a.Y2, b.Y2) - maxInt(a.Y1, b.Y1)
	h := minInt(a.Y2-a.Y1, b.Y2-b.Y1)
	return h > 0 && overlap*2 >= h
}

// mergeBounds combines two bounds into their union
func mergeBounds(a, b Bounds) Bounds {
	return Bounds{
		X1: minInt(a.X1, b.X1),
		Y1: minInt(a.Y1, b.Y1),
		X2: maxInt(a.X2, b.X2),
		Y2: maxInt(a.Y2, b.Y2),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
