// Package recognize reads short printed labels ("TV 07", "#12") out of
// cropped marker regions using an ordered list of recognition tiers.
//
// Two tiers ship by default: a vision-model recognizer (Gemini) that is
// accurate but slow and remote, and a classical Tesseract recognizer that
// is fast, local, and deterministic. The orchestrator tries tiers in
// order per zone; a zone whose every tier fails keeps its place in the
// sequence with an empty label, zero confidence, and method "none"; it
// is never dropped.
//
// Tier failures are absorbed at the zone where they happen. A stalled
// vision call times out and falls through to Tesseract; it never stalls
// or fails the pipeline. Confidence scores from different tiers are not
// numerically comparable; callers should treat any nonzero-confidence
// label as matchable regardless of which tier produced it.
//
// Additional tiers implement the Recognizer interface and slot into the
// orchestrator's list without touching the extraction loop.
package recognize
