package categories

import (
	"time"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// CategoryDTO is the category payload returned by the API.
type CategoryDTO struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ParentID    *int64             `json:"parentId,omitempty"`
	Images      []CategoryImageDTO `json:"images"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// CategoryImageDTO is one image entry on a category payload.
type CategoryImageDTO struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	FileName  string `json:"fileName,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

func newCategoryDTO(category models.Category) CategoryDTO {
	images := make([]CategoryImageDTO, 0, len(category.Images))
	for _, img := range category.Images {
		images = append(images, CategoryImageDTO{
			ID:        img.ID,
			URL:       img.URL,
			FileName:  img.FileName,
			IsPrimary: img.IsPrimary,
		})
	}
	return CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		ParentID:    category.ParentID,
		Images:      images,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}
