package queryservice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"agentic-surfer/internal/domain"
)

// DecodeError reports a response body that could not be classified.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MalformedReply marks the error as a decode failure.
func (e *DecodeError) MalformedReply() bool {
	return true
}

// DecodeReply classifies a response body. Fields are checked in order:
// a truthy "answer", a truthy "result", then "status" equal to "error",
// whose "message" is converted to text as a browser would ("undefined" when
// absent). Any other value becomes an unrecognized reply carrying the body
// re-serialized as JSON.stringify would. Invalid JSON, trailing data and a
// bare null are errors.
func DecodeReply(raw []byte) (domain.Reply, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	body, err := parseValue(dec)
	if err != nil {
		return domain.Reply{}, &DecodeError{Err: fmt.Errorf("queryservice: decode response: %w", err)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return domain.Reply{}, &DecodeError{Err: errors.New("queryservice: decode response: multiple JSON values")}
		}
		return domain.Reply{}, &DecodeError{Err: fmt.Errorf("queryservice: decode response trailing data: %w", err)}
	}
	if body == nil {
		return domain.Reply{}, &DecodeError{Err: errors.New("queryservice: response body is null")}
	}

	obj, ok := body.(*jsObject)
	if !ok {
		return domain.UnrecognizedReply(stringify(body)), nil
	}

	if v, _ := obj.get("answer"); truthy(v) {
		return domain.AnswerReply(fieldText(v)), nil
	}
	if v, _ := obj.get("result"); truthy(v) {
		return domain.ResultReply(fieldText(v)), nil
	}
	if v, _ := obj.get("status"); v == "error" {
		msg := "undefined"
		if m, ok := obj.get("message"); ok {
			msg = jsString(m)
		}
		return domain.ServiceErrorReply(msg), nil
	}
	return domain.UnrecognizedReply(stringify(body)), nil
}

// fieldText shows string answers as they are and anything else as JSON.
func fieldText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return stringify(v)
}
