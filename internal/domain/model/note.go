package model

import "time"

// Note is the public view of a catalog item. It deliberately has no field for
// the protected file reference; that is read separately and only on grant.
type Note struct {
	ID          string
	Title       string
	Subject     string
	Description string
	Price       Amount
	PreviewURL  string
	IsActive    bool
	CreatedAt   time.Time
}
