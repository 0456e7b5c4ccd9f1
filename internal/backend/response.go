package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a backend failure.
type Kind int

const (
	// KindTransport is a network failure or timeout; no response was read.
	KindTransport Kind = iota + 1
	// KindHTTP is a non-2xx response.
	KindHTTP
	// KindApplication is a 2xx response whose envelope carries success:false.
	KindApplication
	// KindDecode is a response body that does not fit the expected type.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindApplication:
		return "application"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned for every failed backend call.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("backend %s error: %v", e.Kind, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == KindHTTP && be.Status == http.StatusNotFound
}

// Response is the normalised outcome of a backend call.
type Response struct {
	OK      bool
	Status  int
	Data    json.RawMessage
	Error   string
	Success bool

	err *Error
}

// Err returns the typed failure, or nil when the call succeeded.
func (r *Response) Err() error {
	if r.OK {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return &Error{Kind: KindHTTP, Status: r.Status, Message: r.Error}
}

// HasData reports whether the response carried a non-null payload.
func (r *Response) HasData() bool {
	return len(r.Data) > 0 && string(r.Data) != "null"
}

// Decode unmarshals the payload into v. A missing payload leaves v untouched.
func (r *Response) Decode(v any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if !r.HasData() {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return &Error{Kind: KindDecode, Status: r.Status, Message: fmt.Sprintf("decoding response: %v", err), Err: err}
	}
	return nil
}

func transportError(err error) *Response {
	return &Response{
		OK:    false,
		Error: err.Error(),
		err:   &Error{Kind: KindTransport, Message: err.Error(), Err: err},
	}
}

// parseBody turns a raw response into a Response. Bodies that are empty or
// not JSON are tolerated: they simply carry no data.
func parseBody(status int, body []byte) *Response {
	var decoded any
	isJSON := len(body) > 0 && json.Unmarshal(body, &decoded) == nil

	if status < 200 || status > 299 {
		msg := ""
		if isJSON {
			msg = errorMessage(decoded)
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", status)
		}
		return &Response{
			Status: status,
			Error:  msg,
			err:    &Error{Kind: KindHTTP, Status: status, Message: msg},
		}
	}

	if !isJSON || decoded == nil {
		return &Response{OK: true, Status: status, Success: true}
	}

	obj, ok := decoded.(map[string]any)
	if !ok || !isEnvelope(obj) {
		return &Response{OK: true, Status: status, Success: true, Data: body}
	}

	var env struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(body, &env)

	if env.Success != nil && !*env.Success {
		msg := errorMessage(obj)
		if msg == "" {
			msg = "API request failed"
		}
		return &Response{
			Status: status,
			Error:  msg,
			err:    &Error{Kind: KindApplication, Status: status, Message: msg},
		}
	}

	return &Response{OK: true, Status: status, Success: true, Data: env.Data}
}

// isEnvelope reports whether a JSON object is the {success, data, error}
// wrapper rather than a bare entity. A {data, pagination} page is not an
// envelope.
func isEnvelope(obj map[string]any) bool {
	if _, ok := obj["success"]; ok {
		return true
	}
	if _, ok := obj["data"]; !ok {
		return false
	}
	for k := range obj {
		switch k {
		case "data", "error", "message":
		default:
			return false
		}
	}
	return true
}

func errorMessage(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"error", "message"} {
		switch e := obj[key].(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if m, ok := e["message"].(string); ok && m != "" {
				return m
			}
		}
	}
	return ""
}
