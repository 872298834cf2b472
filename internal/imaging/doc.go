// Package imaging provides the raster stages of the tracing pipeline.
//
// This package turns decoded images into grayscale pages, cleans them up and
// reduces them to binary ink masks ready for skeletonization and contour
// tracing. It also hosts the image file cache used by raster page sources and
// the debug preview renderer.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with (0,0) at the top-left
// corner, X increasing rightward and Y increasing downward. Rectangles follow
// image.Rectangle semantics: Min is inclusive, Max is exclusive. The flip to
// the Y-up output space happens later, in the trace package.
//
// # Pages and Masks
//
//   - Page: an *image.Gray (0 = black ink, 255 = white substrate) plus the
//     Scale in raster pixels per source unit (PDF point or source pixel).
//   - Mask: a dense width x height grid of booleans where true marks ink.
//
// Both are page-scoped values. Stages return new values rather than mutating
// their inputs, except EraseRects which works on the page it is handed and
// is meant for a page-local working copy.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and can be called concurrently on different pages.
//
// # Libraries
//
// Median filtering and the local means of the adaptive threshold come from
// github.com/anthonynsimon/bild. Decoding, orientation and resampling use
// github.com/disintegration/imaging. Color to gray reduction uses the CIE L*
// lightness from github.com/lucasb-eyer/go-colorful.
package imaging
