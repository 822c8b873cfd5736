package models

import "io"

type Blob struct {
	FileName   string
	ReadCloser io.ReadCloser
}

type ExportResult struct {
	Periodo   Periodo
	FileName  string
	Rows      int
	SignedUrl string
}
