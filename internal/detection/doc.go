// Package detection locates drawn annotation rectangles in a floor-plan
// image by scanning for a designated marker color and clustering the hits.
//
// The detector has no prior model of how many rectangles exist. It samples
// the pixel buffer on a fixed stride, classifies each sample against the
// configured annotation color, chains nearby hits into clusters, and
// reports each surviving cluster's bounding box in reading order
// (top-to-bottom by row, then left-to-right).
//
// Clustering is deliberately single-link: at a 5–10 pixel stride a drawn
// rectangle's four borders are sparse, disconnected runs of samples, and a
// strict connected-components pass would split one marker into four
// fragments. Chaining within ClusterRadius merges them back into one
// object.
//
// All tunables live in Params. The marker color and clustering radius vary
// by deployment (different pens, different image resolutions), so nothing
// here is hard-coded; see Params for the documented defaults.
package detection
