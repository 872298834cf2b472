// Package trace turns binary ink masks into output-space polylines.
//
// The stages, in pipeline order:
//
//  1. Skeletonizer: thin every 8-connected ink component to a 1-px spine
//     without splitting or merging components.
//  2. FindContours: flat Suzuki-Abe border following over the mask. Every
//     outer border and every hole border is returned at the same level, and
//     each walk is compressed to the pixels where its direction changes.
//  3. Simplify: Douglas-Peucker worst-point elimination, repeated until it
//     no longer removes anything.
//  4. Transform: pixel (px, py) with a Y-down origin to output (x, y) with a
//     Y-up origin: x = px*k, y = (H - py)*k, k = outputScale / page.Scale.
//
// Trace runs 2 to 4 for one mask and is what the pipeline calls.
package trace
