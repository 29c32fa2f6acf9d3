// Package ffmpeg adapts the ffmpeg and ffprobe binaries: audio extraction
// into a normalized container, duration probing and fixed-length splitting.
package ffmpeg
