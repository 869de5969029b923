package repository

import "errors"

var (
	ErrPartnerNotFound      = errors.New("repository: partner not found")
	ErrCredentialNotFound   = errors.New("repository: credential not found")
	ErrDuplicatePartnerName = errors.New("repository: partner name already exists")
)
