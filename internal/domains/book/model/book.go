package model

// Book is the upstream resource. The proxy never interprets the timestamps,
// it passes them through when the backend sends them.
type Book struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Category  string  `json:"category"`
	Desc      string  `json:"desc"`
	Content   string  `json:"content"`
	Image     *string `json:"image"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// CurrentImage returns the stored public path, "" when there is none.
func (b *Book) CurrentImage() string {
	if b == nil || b.Image == nil {
		return ""
	}
	return *b.Image
}

// BookPayload is the JSON body of POST/PUT /books upstream. Image is always
// serialized, as null when the book has no cover.
type BookPayload struct {
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Category string  `json:"category"`
	Desc     string  `json:"desc"`
	Content  string  `json:"content"`
	Image    *string `json:"image"`
}
