package controllers

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
)

func validationError(message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message)
}

// parseUUID parses a uuid taken from a request body field.
func parseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a uuid")
	}
	return id, nil
}
