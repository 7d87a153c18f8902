// Package media stores thumbnail images for catalog records.
//
// A video can carry two thumbnails: a custom one uploaded by the user
// and an automatic one captured from the video with ffmpeg. Both are
// normalized to bounded JPEGs on disk; the catalog stores only the
// filename reference.
package media
