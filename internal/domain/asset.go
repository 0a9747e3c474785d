package domain

// ResourceType is the media class hint sent to the media store.
type ResourceType string

const (
	ResourceTypeAuto  ResourceType = "auto"
	ResourceTypeImage ResourceType = "image"
	ResourceTypeVideo ResourceType = "video"
	ResourceTypeRaw   ResourceType = "raw"
)

// Destroy acknowledgments reported by the media store.
const (
	DestroyResultOK       = "ok"
	DestroyResultNotFound = "not found"
)

// StoredAsset is the reference the media store issues for an uploaded file.
// The relay keeps no copy; the caller is the only holder after the response is sent.
type StoredAsset struct {
	URL      string `json:"url" example:"https://res.cloudinary.com/demo/image/upload/v1712345678/uploads/cat.jpg"`
	PublicID string `json:"public_id" example:"uploads/cat"`
}

// DestroyResult is the media store's answer to a destroy call. It is returned to the
// client unmodified.
type DestroyResult struct {
	Result string `json:"result" example:"ok"`
}
