package kit

import (
	"encoding/json"
	"io"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func WriteError(w io.Writer, msg string, details any) error {
	return WriteJSON(w, ErrorResponse{Error: msg, Details: details})
}
