package backend

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const hashChunkSize = 64 * 1024

// FileHashSHA1 computes the SHA-1 digest of the file at path, streaming it in
// 64KiB chunks, and returns it as a lowercase hex string. The digest is used
// for cheap change detection only, not for anything security-sensitive.
func FileHashSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// TimeStringFromMsec formats a millisecond count as "MM:SS.mmm".
func TimeStringFromMsec(msec int) string {
	minutes := msec / 60000
	seconds := (msec / 1000) % 60
	milliseconds := msec % 1000

	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, milliseconds)
}
