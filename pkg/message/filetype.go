package message

import (
	"path/filepath"
	"strings"
)

// FileType is the semantic type of an attachment, derived from its MIME type.
type FileType string

// Supported semantic file types.
const (
	FileImage   FileType = "image"
	FileAudio   FileType = "audio"
	FileVideo   FileType = "video"
	FileGeneric FileType = "file"
)

// extensionTypes maps common file extensions to semantic types, used when
// the platform does not declare a MIME type for an attachment.
var extensionTypes = map[string]FileType{
	".jpg": FileImage, ".jpeg": FileImage, ".png": FileImage,
	".gif": FileImage, ".webp": FileImage, ".bmp": FileImage, ".svg": FileImage,
	".mp3": FileAudio, ".ogg": FileAudio, ".wav": FileAudio,
	".m4a": FileAudio, ".flac": FileAudio, ".aac": FileAudio,
	".mp4": FileVideo, ".mov": FileVideo, ".avi": FileVideo,
	".mkv": FileVideo, ".webm": FileVideo,
}

// FileTypeFromMIME maps a declared MIME type to a semantic file type.
// Anything that is not an image, audio, or video type maps to FileGeneric.
func FileTypeFromMIME(mimeType string) FileType {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "image/"):
		return FileImage
	case strings.HasPrefix(mt, "audio/"):
		return FileAudio
	case strings.HasPrefix(mt, "video/"):
		return FileVideo
	default:
		return FileGeneric
	}
}

// FileTypeFor resolves a semantic file type from a declared MIME type,
// falling back to the file name's extension when the MIME type is absent.
func FileTypeFor(mimeType, fileName string) FileType {
	if mimeType != "" {
		return FileTypeFromMIME(mimeType)
	}
	if ft, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ft
	}
	return FileGeneric
}
