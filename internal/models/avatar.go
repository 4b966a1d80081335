package models

// AvatarFolder is a folder of avatar images on the asset host
type AvatarFolder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// AvatarImage is a single selectable avatar
type AvatarImage struct {
	URL  string `json:"url"`
	ID   string `json:"id"`
	Name string `json:"name"`
}
