package command

import (
	"fmt"
	"io"
)

func fprintfTo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

func fprintlnTo(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}
