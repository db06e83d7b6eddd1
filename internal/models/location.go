package models

import (
	"time"
)

// StorageLocation is a physical bin cards can be filed in. The three default
// locations always exist and cannot be deleted; custom locations are created
// by the user and carry IsCustom=true.
type StorageLocation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsCustom    bool      `json:"is_custom"`
	DateCreated time.Time `json:"date_created,omitzero"`
}

type CreateLocationRequest struct {
	Name string `json:"name" binding:"required"`
}
