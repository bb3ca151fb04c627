package telegram

// ══════════════════════════════════════════════════════════════════════════════
// INPUT FILES
// ══════════════════════════════════════════════════════════════════════════════

// InputFile describes a file passed into an API method: an existing file_id,
// an HTTP URL for the server to fetch, or local bytes to upload. Only local
// bytes force the multipart encoding path.
type InputFile struct {
	fileID string
	url    string
	name   string
	data   []byte
}

// FileID references a file already stored on the Telegram servers.
func FileID(id string) *InputFile {
	return &InputFile{fileID: id}
}

// FileURL references a file by HTTP URL for Telegram to download.
func FileURL(url string) *InputFile {
	return &InputFile{url: url}
}

// FileBytes uploads local bytes under the given filename.
func FileBytes(name string, data []byte) *InputFile {
	return &InputFile{name: name, data: data}
}

// NeedsUpload reports whether the file carries local bytes and therefore
// requires the multipart encoding path.
func (f *InputFile) NeedsUpload() bool {
	return f != nil && f.data != nil
}

// Name returns the upload filename for local files.
func (f *InputFile) Name() string { return f.name }

// reference returns the non-upload wire value (file_id or URL).
func (f *InputFile) reference() string {
	if f.fileID != "" {
		return f.fileID
	}
	return f.url
}
