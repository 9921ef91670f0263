// Command storyreel queues story project directories and assembles them into
// narrated videos: it discovers assets, synthesizes narration, reconciles
// durations, aligns captions, and drives ffmpeg to produce the final file.
package main
