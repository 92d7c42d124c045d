package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorCrossTenantReference means a document references an entity owned by a
// different tenant. This indicates a bug or an attack and must never post.
var ErrorCrossTenantReference = errors.New("cross-tenant reference")

// ErrorInvalidDocumentState means a domain rule is violated (adjustment
// without a party, transfer with identical accounts, and so on). Raised
// before any journal or stock mutation.
var ErrorInvalidDocumentState = errors.New("invalid document state")
