// Package ffmpeg wraps the ffmpeg command line for scene clip construction,
// concatenation and caption burn-in. Every clip is encoded with identical
// settings so the final concat is a stream copy.
package ffmpeg
