package models

// User represents an account that may log in and obtain a token.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(64)" validate:"required,email,min=5,max=64"`
	Password string `gorm:"type:varchar(255)" validate:"required,min=5"` // No json tag for security
}
