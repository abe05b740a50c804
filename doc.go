// Package simspace implements the data model of a content-based
// similarity-search framework: objects wrapping feature vectors or
// multi-descriptor records, each equipped with its own dissimilarity
// function, plus the textual and compact binary serialization those
// objects use for persistence and transfer.
//
// The object families live in subpackages: vector (fixed-length numeric
// vectors with injected metrics), feature (local image features and
// set-matching distances), meta (composite objects with aggregate
// distances), face (the external similarity oracle adapter), bitvector
// (roaring-bitmap signatures) and datafile (record streams). The root
// package ties them together with a loader for whole datafiles.
package simspace
