package detection

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxAudioFileBytes keeps encoded files under DefaultMaxBase64Length.
const maxAudioFileBytes = DefaultMaxBase64Length / 4 * 3

// EncodeFile reads an audio file and returns its standard Base64 text.
func EncodeFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("encode audio: empty path")
	}
	st, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat audio: %w", err)
	}
	if st.IsDir() {
		return "", fmt.Errorf("encode audio: %s is a directory", path)
	}
	if st.Size() == 0 {
		return "", fmt.Errorf("encode audio: %s is empty", path)
	}
	if st.Size() > maxAudioFileBytes {
		return "", fmt.Errorf("encode audio: %s is %d bytes, limit is %d", path, st.Size(), maxAudioFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// FormatFromPath derives the audio format from the file extension,
// falling back to mp3.
func FormatFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "mp3", "wav", "ogg", "flac", "m4a", "aac", "webm", "opus":
		return ext
	case "mpeg", "mpga":
		return "mp3"
	default:
		return DefaultAudioFormat
	}
}

// DataURL prefixes b64 with the data URL tag a browser would produce.
func DataURL(format, b64 string) string {
	return "data:audio/" + mimeSubtype(format) + ";base64," + b64
}

func mimeSubtype(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "mp3":
		return "mpeg"
	case "m4a", "aac":
		return "mp4"
	default:
		return strings.ToLower(strings.TrimSpace(format))
	}
}
