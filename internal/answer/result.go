// Package answer talks to the remote language model.
//
// Every outcome is a Result rather than a Go error: a remote failure is
// something to show the user, not something to abort on.
package answer

import (
	"context"
	"fmt"
)

// Kind tags the outcome of an Ask call.
type Kind int

const (
	Success Kind = iota
	HTTPError
	TransportError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case HTTPError:
		return "http_error"
	case TransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Result is what came back from the model endpoint.
type Result struct {
	Kind Kind
	// Text is the raw response body on success.
	Text string
	// StatusCode and Body are set for HTTPError.
	StatusCode int
	Body       string
	// Err is set for TransportError.
	Err error
}

// SuccessResult wraps a verbatim model answer.
func SuccessResult(text string) Result { return Result{Kind: Success, Text: text} }

// HTTPFailure records a non-200 response.
func HTTPFailure(status int, body string) Result {
	return Result{Kind: HTTPError, StatusCode: status, Body: body}
}

// TransportFailure records a request that never produced a response.
func TransportFailure(err error) Result { return Result{Kind: TransportError, Err: err} }

// OK reports whether the result is a genuine model answer.
func (r Result) OK() bool { return r.Kind == Success }

// String renders the result the way it is shown to users.
func (r Result) String() string {
	switch r.Kind {
	case Success:
		return r.Text
	case HTTPError:
		return fmt.Sprintf("Error: %d - %s", r.StatusCode, r.Body)
	default:
		msg := "unknown error"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		return "Error calling API: " + msg
	}
}

// Asker sends a prompt on behalf of a user and returns the model's answer.
type Asker interface {
	Ask(ctx context.Context, prompt, userID string) Result
}
