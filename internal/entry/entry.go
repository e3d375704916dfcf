package entry

// Entry is one parsed software description.
type Entry struct {
	Title         string
	DisplayName   string
	Version       string
	Description   []string
	Features      []string
	Screenshots   []Screenshot
	DownloadLinks []DownloadLink
	Extra         []string
}

// Screenshot is one captioned image.
type Screenshot struct {
	Caption     string
	Attribution string
	URL         string
}

// DownloadLink is one download location with an optional extraction code.
type DownloadLink struct {
	URL            string
	ExtractionCode string
}

// Filename returns the filesystem-safe base name used for every artifact of e.
func (e Entry) Filename() string {
	return SafeFilename(e.Title)
}
