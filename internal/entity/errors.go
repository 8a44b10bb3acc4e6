package entity

import "errors"

var (
	ErrNotFound           = errors.New("registro não encontrado")
	ErrEmailAlreadyExists = errors.New("email já cadastrado")
)
