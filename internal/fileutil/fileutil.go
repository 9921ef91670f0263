// Package fileutil publishes pipeline outputs into user-visible locations.
// The final video is the whole point of a run, so the copy out of staging is
// verified rather than trusted.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// CopyVerified copies src to dst and then re-reads dst from disk, comparing
// sizes and SHA-256 digests. A destination that does not match what was read
// from the source is removed so a truncated or corrupted output never looks
// like a finished one.
func CopyVerified(src, dst string) error {
	srcDigest, srcSize, err := copyAndHash(src, dst)
	if err != nil {
		return err
	}

	dstDigest, dstSize, err := hashFile(dst)
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("read back %s: %w", dst, err)
	}
	if dstSize != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("publish %s: wrote %d bytes, source has %d", dst, dstSize, srcSize)
	}
	if !bytes.Equal(srcDigest, dstDigest) {
		_ = os.Remove(dst)
		return fmt.Errorf("publish %s: digest mismatch after copy", dst)
	}
	return nil
}

func copyAndHash(src, dst string) ([]byte, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, 0, fmt.Errorf("create destination: %w", err)
	}

	hasher := sha256.New()
	size, err := io.Copy(out, io.TeeReader(in, hasher))
	if err != nil {
		out.Close()
		_ = os.Remove(dst)
		return nil, 0, fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return nil, 0, fmt.Errorf("flush %s: %w", dst, err)
	}
	return hasher.Sum(nil), size, nil
}

func hashFile(path string) ([]byte, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return nil, 0, err
	}
	return hasher.Sum(nil), size, nil
}
