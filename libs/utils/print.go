package utils

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrintStruct prints a struct as indented JSON.
func PrintStruct(w io.Writer, t interface{}) {
	j, _ := json.MarshalIndent(t, "", "  ")
	fmt.Fprintln(w, string(j))
}
