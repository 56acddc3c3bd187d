package summarizer

import "errors"

var (
	// ErrEmptyResponse indicates the API answered successfully but with no summary text.
	ErrEmptyResponse = errors.New("empty summary response")

	// ErrMalformedResponse indicates the response body did not have the expected structure.
	ErrMalformedResponse = errors.New("malformed summary response")

	// ErrAPIStatus indicates the API answered with a non-200 status.
	ErrAPIStatus = errors.New("summary API returned error status")

	// ErrEmptyInput indicates Summarize was called without text.
	ErrEmptyInput = errors.New("empty input text")
)
