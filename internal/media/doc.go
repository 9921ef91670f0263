// Package media discovers visual assets in a project directory and derives
// the deterministic ordering used everywhere downstream. Assets are ordered
// by a numeric rank parsed from the file name, with file modification time
// as the tie-break and as the fallback for rankless names.
package media
