// Package match binds detected, labeled rectangles to hardware output
// channels and assembles the final zone records.
//
// Matching runs in two passes over the reading-order rectangle sequence.
// The label pass consumes roster entries by extracted channel number or
// exact label; the positional pass hands each remaining rectangle the
// next unused output in ascending channel order. Every rectangle ends up
// with some output as long as the roster is deep enough; when it is not,
// the leftover zones are kept and reported as unassigned rather than
// silently truncated.
//
// Match is a pure function of its inputs: no state survives between
// invocations, so identical inputs always produce identical assignments.
package match
