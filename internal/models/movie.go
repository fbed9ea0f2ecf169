package models

// Movie represents a single entry in the movie catalog.
//
// The id is assigned by the store on insert and never changes afterwards.
// Rating and Category carry defaults that the handlers apply before
// validation when the client omits them.
type Movie struct {
	ID       uint    `json:"id" gorm:"primaryKey;autoIncrement" validate:"omitempty"`
	Title    string  `json:"title" gorm:"type:varchar(45)" validate:"required,min=5,max=45"`
	Overview string  `json:"overview" gorm:"type:varchar(250)" validate:"required,min=15,max=250"`
	Year     int     `json:"year" validate:"required,lte=2025"`
	Rating   float64 `json:"rating" validate:"gte=1,lte=10"`
	Category string  `json:"category" gorm:"type:varchar(15)" validate:"min=5,max=15"`
}

// DefaultRating and DefaultCategory are applied to create/update requests
// that leave the fields unset.
const (
	DefaultRating   = 10.0
	DefaultCategory = "Categoria"
)

func (Movie) TableName() string {
	return "movies"
}
