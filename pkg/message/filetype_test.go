package message

import "testing"

func TestFileTypeFromMIME(t *testing.T) {
	tests := []struct {
		mime string
		want FileType
	}{
		{"image/png", FileImage},
		{"image/jpeg", FileImage},
		{"audio/mpeg", FileAudio},
		{"video/mp4", FileVideo},
		{"application/pdf", FileGeneric},
		{"text/plain", FileGeneric},
		{"", FileGeneric},
		{"IMAGE/PNG", FileImage},
	}
	for _, tt := range tests {
		if got := FileTypeFromMIME(tt.mime); got != tt.want {
			t.Errorf("FileTypeFromMIME(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestFileTypeForFallsBackToExtension(t *testing.T) {
	tests := []struct {
		mime string
		name string
		want FileType
	}{
		{"image/png", "whatever.pdf", FileImage}, // declared MIME wins
		{"", "photo.JPG", FileImage},
		{"", "song.mp3", FileAudio},
		{"", "clip.webm", FileVideo},
		{"", "report.pdf", FileGeneric},
		{"", "no-extension", FileGeneric},
	}
	for _, tt := range tests {
		if got := FileTypeFor(tt.mime, tt.name); got != tt.want {
			t.Errorf("FileTypeFor(%q, %q) = %q, want %q", tt.mime, tt.name, got, tt.want)
		}
	}
}
