// Package conversion implements the HTML to Bee JSON import pipeline.
//
// A single import runs validate → normalize → convert → adapt → persist as one
// unit of work: the template record is written only after the remote
// conversion succeeded, in a single repository call, so a failure at any
// stage leaves nothing behind. Batch imports run the same pipeline per item
// and report failures per item instead of aborting.
//
// Repository implementations live in repository/postgres/.
package conversion
