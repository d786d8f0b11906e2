package main

import (
	"fmt"

	"github.com/alnah/go-mdexport"
)

// runThemes lists the built-in themes, marking the default.
func runThemes(args []string, env *Environment) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: themes takes no arguments", ErrUsage)
	}
	for _, t := range mdexport.Themes() {
		if t == mdexport.ThemeGitHub {
			fmt.Fprintf(env.Stdout, "%s (default)\n", t)
			continue
		}
		fmt.Fprintln(env.Stdout, t)
	}
	return nil
}
