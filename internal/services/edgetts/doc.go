// Package edgetts wraps the edge-tts command-line tool for narration
// synthesis. One invocation produces one mp3 from one scene's script text.
package edgetts
