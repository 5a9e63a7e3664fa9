package dto

import "github.com/tnqbao/gau-register-service/entity"

type CreateSchemaRequestDTO struct {
	Title          string                      `json:"title" binding:"required"`
	Description    string                      `json:"description"`
	Version        string                      `json:"version"`
	Properties     map[string]*entity.Property `json:"properties"`
	Required       []string                    `json:"required"`
	HardValidation *bool                       `json:"hardValidation"`
}

type UpdateSchemaRequestDTO struct {
	Title          *string                      `json:"title"`
	Description    *string                      `json:"description"`
	Version        *string                      `json:"version"`
	Properties     *map[string]*entity.Property `json:"properties"`
	Required       *[]string                    `json:"required"`
	HardValidation *bool                        `json:"hardValidation"`
}
