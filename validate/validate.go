// Package validate implements the required-field contract shared by the
// controllers: fields are checked for presence in a fixed order and the
// result lists every absent field's message, in that order, before any
// handler logic runs.
package validate

// Field pairs a required input value with the message reported when the
// value is absent.
type Field struct {
	Value   string
	Message string
}

// Result is the outcome of a presence check.
type Result struct {
	Missing []string
}

// OK reports whether every required field was present.
func (r Result) OK() bool {
	return len(r.Missing) == 0
}

// First returns the message for the first missing field, in check order.
// Controllers report only this one message per response.
func (r Result) First() string {
	if len(r.Missing) == 0 {
		return ""
	}
	return r.Missing[0]
}

// Required checks the given fields in order and collects the messages of
// those with an empty value.
func Required(fields ...Field) Result {
	var r Result
	for _, f := range fields {
		if f.Value == "" {
			r.Missing = append(r.Missing, f.Message)
		}
	}
	return r
}
