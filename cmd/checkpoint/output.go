package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// outputJSON writes v as indented JSON to stdout, used by every command's
// --json path.
func outputJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: encoding JSON output: %v\n", err)
		os.Exit(1)
	}
}
