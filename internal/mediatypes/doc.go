// Package mediatypes defines the file extension allow-lists and MIME type
// table used by the scanner and the streaming endpoints.
//
// Supported file types:
//   - Videos: mp4, mkv, avi, mov, wmv, flv, webm, m4v, mpeg, mpg, 3gp, ts
//   - Subtitles: srt, vtt, ass, ssa, sub
//   - Metadata sidecars: nfo
package mediatypes
