package handlers

const (
	defaultPageSize = 20
	maxPageSize     = 100

	contentTypeMIDI = "audio/midi"
)
