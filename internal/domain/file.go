package domain

import (
	"path/filepath"
	"strings"
)

type FileState string

const (
	FileStateUnspecified FileState = "STATE_UNSPECIFIED"
	FileStateProcessing  FileState = "PROCESSING"
	FileStateActive      FileState = "ACTIVE"
	FileStateFailed      FileState = "FAILED"
)

// UploadedFile is a server-side handle to a submitted file. Name is the
// opaque identifier used to re-fetch its state.
type UploadedFile struct {
	Name        string
	DisplayName string
	URI         string
	MIMEType    string
	State       FileState
}

func (f *UploadedFile) IsProcessing() bool {
	return f.State == FileStateProcessing
}

func (f *UploadedFile) IsActive() bool {
	return f.State == FileStateActive
}

const (
	MIMETypeMP3 = "audio/mp3"
	MIMETypeWAV = "audio/wav"
)

// ContentTypeFor picks the upload content type from the file extension.
// Only .mp3 is recognised; anything else is sent as WAV.
func ContentTypeFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		return MIMETypeMP3
	}
	return MIMETypeWAV
}
