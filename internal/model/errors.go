package model

import "errors"

// ErrNotFound - запись не найдена или принадлежит другому пользователю
var ErrNotFound = errors.New("record not found")
