// Package tools exposes the retrieval engines through the tool-style
// contract the enclosing agent calls: query and action in, structured
// envelope or formatted text out. Nothing here propagates an error to the
// caller; every operation answers with a success/failure envelope so the
// agent loop can proceed without the tool.
package tools

// Envelope is the JSON shape every knowledge-tool action returns. Success
// is always present; the rest is action-specific.
type Envelope map[string]any

// Success builds a success envelope with the given extra fields.
func Success(fields Envelope) Envelope {
	env := Envelope{"success": true}
	for key, value := range fields {
		env[key] = value
	}
	return env
}

// Failure builds a failure envelope carrying the error message.
func Failure(message string) Envelope {
	return Envelope{"success": false, "error": message}
}
