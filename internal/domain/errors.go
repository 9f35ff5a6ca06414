package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrNoFile              = errors.New("no file provided")
	ErrEmptyFile           = errors.New("uploaded file is empty")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUnknownProvider     = errors.New("unknown analyzer provider")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrAnalysisExists      = errors.New("analysis already exists for this file")
	ErrAnalysisNotFound    = errors.New("analysis not found")
	ErrNotPDF              = errors.New("preview requires a PDF document")
)
