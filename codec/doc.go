// Package codec provides the composable byte-stream encoding stages used
// throughout the storage core: Base-128 varint, ZigZag, Delta, and
// run-length encoding (RLE). Each stage wraps the next, so a pipeline such
// as "timestamps: Delta -> ZigZag -> RLE -> Base128" is built by
// constructing the stages innermost-first and writing through the
// outermost one.
//
// Stages commit in LIFO order of construction: the outermost writer's
// Commit call triggers the next stage's Commit, and so on down to the
// terminal varint layer that appends bytes to the BoundedWriter. A reader peels
// the layers in the reverse order they were built.
package codec
