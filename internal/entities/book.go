package entities

import "time"

// Form field names understood by Book.Assign.
const (
	FieldTitle  = "title"
	FieldAuthor = "author"
	FieldGenre  = "genre"
	FieldYear   = "year"
)

type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"index;size:512;not null" json:"title" validate:"required"`
	Author    string    `gorm:"index;size:256;not null" json:"author" validate:"required"`
	Genre     string    `gorm:"size:128" json:"genre,omitempty"`
	Year      string    `gorm:"size:16" json:"year,omitempty" validate:"omitempty,year"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// Assign overwrites the fields present in attrs. Unknown keys are ignored
// and absent keys leave the current value untouched.
func (b *Book) Assign(attrs map[string]string) {
	if v, ok := attrs[FieldTitle]; ok {
		b.Title = v
	}
	if v, ok := attrs[FieldAuthor]; ok {
		b.Author = v
	}
	if v, ok := attrs[FieldGenre]; ok {
		b.Genre = v
	}
	if v, ok := attrs[FieldYear]; ok {
		b.Year = v
	}
}

// BuildBook returns an unsaved book populated from attrs.
func BuildBook(attrs map[string]string) *Book {
	book := &Book{}
	book.Assign(attrs)
	return book
}
