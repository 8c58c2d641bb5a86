package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bookstore-proxy/internal/shared/formdata"
)

const ImageField = "image"

// BookForm là dữ liệu text của form tạo/sửa sách
type BookForm struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Desc     string `json:"desc"`
	Content  string `json:"content"`
}

// BookFormFromMultipart takes the first value of every field.
func BookFormFromMultipart(form *formdata.Form) BookForm {
	return BookForm{
		Title:    form.Value("title"),
		Author:   form.Value("author"),
		Category: form.Value("category"),
		Desc:     form.Value("desc"),
		Content:  form.Value("content"),
	}
}

// Validate only checks presence. Length rules belong to the upstream.
func (f BookForm) Validate() error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required.Error("title is required")),
		validation.Field(&f.Author, validation.Required.Error("author is required")),
		validation.Field(&f.Category, validation.Required.Error("category is required")),
		validation.Field(&f.Desc, validation.Required.Error("desc is required")),
		validation.Field(&f.Content, validation.Required.Error("content is required")),
	)
	if err != nil {
		if errs, ok := err.(validation.Errors); ok {
			return &ValidationError{Fields: errs}
		}
		return err
	}
	return nil
}

func (f BookForm) Payload(image *string) BookPayload {
	return BookPayload{
		Title:    f.Title,
		Author:   f.Author,
		Category: f.Category,
		Desc:     f.Desc,
		Content:  f.Content,
		Image:    image,
	}
}
