package model

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// User-facing messages, in the language of the catalog UI.
const (
	MsgAllFieldsRequired = "Semua field wajib diisi"
	MsgBookNotFound      = "Buku tidak ditemukan"
	MsgInvalidBookID     = "ID buku tidak valid"
	MsgInvalidForm       = "Gagal memproses form"
	MsgInvalidImage      = "Gagal memproses gambar"
	MsgImageWriteFailed  = "Gagal menyimpan gambar"
	MsgListFailed        = "Gagal mengambil data buku"
	MsgGetFailed         = "Gagal mengambil buku"
	MsgCreateFailed      = "Gagal menambahkan buku"
	MsgUpdateFailed      = "Gagal memperbarui buku"
	MsgDeleteFailed      = "Gagal menghapus buku"
	MsgDeleted           = "Buku berhasil dihapus"
)

var ErrInvalidBookID = errors.New("book id must be a positive integer")

// ValidationError lists the missing fields of a book form.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func (e *ValidationError) Unwrap() error {
	return e.Fields
}
