package domain

// StoredFile describes a blob written to the upload store.
type StoredFile struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
}
