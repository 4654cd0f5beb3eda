package internal

import (
	"fmt"
	"os"

	"github.com/mitchellh/colorstring"
)

// NO_COLOR determines whether colored output is disabled.
var NO_COLOR bool = false

var colorMap = map[string]string{
	"red":    "[red]",
	"green":  "[green]",
	"yellow": "[yellow]",
	"purple": "[magenta]",
	"cyan":   "[cyan]",
	"white":  "[white]",
	"error":  "[red]",
}

// Log prints the given message to the console, colored with the given color.
// Errors and warnings go to stderr so exported/piped output stays clean.
func Log(color, message string) {
	dest := os.Stdout
	if color == "red" || color == "error" || color == "yellow" {
		dest = os.Stderr
	}

	prefix, ok := colorMap[color]
	if !ok || NO_COLOR {
		fmt.Fprintln(dest, message)
		return
	}
	fmt.Fprintln(dest, colorstring.Color(prefix+message+"[reset]"))
}
