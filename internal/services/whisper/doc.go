// Package whisper wraps the whisper command-line speech recognizer. The
// recognized text is never displayed; callers use the phrase timings to place
// script sentences on the caption timeline.
package whisper
