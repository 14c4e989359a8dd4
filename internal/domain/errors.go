package domain

import "errors"

var (
	ErrInvalidK      = errors.New("number of results must be at least 1")
	ErrEmptyQuery    = errors.New("please enter a search query")
	ErrEmptyQuestion = errors.New("please enter a question")
	ErrMissingField  = errors.New("please provide both title and content")
	ErrNoContext     = errors.New("no relevant documents found in the knowledge base")
	ErrUnknownSample = errors.New("unknown sample document")
)
