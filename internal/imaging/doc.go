// Package imaging handles decoding uploaded layout images and preparing
// rectangular regions for the recognition tiers.
//
// The package owns the first stage of the import pipeline: turning an
// arbitrary PNG or JPEG upload into a Frame with a known-geometry RGBA
// pixel buffer, and later cropping per-zone regions out of that buffer
// for OCR.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left
// corner. X increases rightward, Y increases downward. Regions use the
// image.Rectangle convention: Min is inclusive, Max is exclusive.
//
// # Degenerate Uploads
//
// A historical upload bug produced 1×1 truncated files. Decode treats any
// image with width or height of one pixel or less as corrupt and returns
// a *DecodeError rather than handing an empty canvas to detection.
package imaging
