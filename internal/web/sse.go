package web

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeSSE writes one server-sent event with a JSON payload.
func writeSSE(w io.Writer, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
