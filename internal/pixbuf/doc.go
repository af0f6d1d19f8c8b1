// Package pixbuf holds the row-major, channel-interleaved byte buffer that the
// slicer scans.
//
// A Buffer is built from a decoded image (or several, stacked vertically in
// folder mode) and owned by the single pipeline invocation that processes it.
// Pixel (r, c) channel k lives at index (r*Width+c)*Channels+k. Buffers grow
// only through Append, before scanning starts, and are never mutated while a
// strategy walks them.
package pixbuf
