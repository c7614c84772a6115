package upload

// ImageResult describes a stored image.
type ImageResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
}

// StorageStats summarizes bucket usage for the admin panel.
type StorageStats struct {
	TotalObjects int   `json:"totalObjects"`
	TotalSize    int64 `json:"totalSize"`
}
