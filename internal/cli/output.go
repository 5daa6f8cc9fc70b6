package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// emit writes v either as indented JSON or via the text renderer,
// depending on the selected format.
func emit(w io.Writer, format string, v any, text func(io.Writer)) error {
	if format == "json" {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	text(w)
	return nil
}
