// Package imageio decodes source images and encodes segments.
//
// Decoding accepts PNG, JPEG, GIF, BMP, TIFF and WebP. Encoding supports PNG,
// JPEG, BMP and TIFF; WebP has no encoder in golang.org/x/image.
package imageio
