package model

import (
	"fmt"
	"strconv"
	"strings"
)

const BookListCacheKey = "books:list"

func GenerateBookDetailCacheKey(id int64) string {
	return fmt.Sprintf("books:detail:%d", id)
}

// ParseBookID accepts a plain positive decimal integer.
func ParseBookID(raw string) (int64, error) {
	if raw == "" || strings.HasPrefix(raw, "+") {
		return 0, ErrInvalidBookID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidBookID
	}
	return id, nil
}
