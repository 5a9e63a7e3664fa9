package dto

type CreateRegisterRequestDTO struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Folder      string   `json:"folder"`
	Schemas     []uint64 `json:"schemas"`
}

type UpdateRegisterRequestDTO struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Version     *string   `json:"version"`
	Folder      *string   `json:"folder"`
	Schemas     *[]uint64 `json:"schemas"`
}
