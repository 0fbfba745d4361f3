package domain

import "errors"

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDocumentExists    = errors.New("document already exists")
	ErrInvalidDocumentID = errors.New("invalid document id")
	ErrSelectionLost     = errors.New("selection no longer present in content")
	ErrSaveFailed        = errors.New("save failed")
	ErrRevisionConflict  = errors.New("document revision is stale")
)
