package dto

import "maintenance-system/internal/entities"

// CatalogueItemInputDTO - тело создания и изменения записи справочника.
type CatalogueItemInputDTO struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CatalogueItemDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func CatalogueItemFromEntity(e entities.CatalogueItem) CatalogueItemDTO {
	return CatalogueItemDTO{ID: e.ID, Name: e.Name}
}
