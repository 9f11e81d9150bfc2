// Package cli holds command-line helpers shared by the tools.
package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// ReorderArgs moves positional arguments behind "--" so negative numbers
// (coordinates, dB thresholds) are not parsed as shorthand flags. Names in
// legacy are also accepted with a single dash (-teal becomes --teal).
func ReorderArgs(fs *pflag.FlagSet, args []string, legacy ...string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if isLegacy(a, legacy) {
			flags = append(flags, "-"+a)
			continue
		}
		if isNumber(a) || !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if !strings.Contains(a, "=") && takesValue(fs, a) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	if len(positional) == 0 {
		return flags
	}
	return append(append(flags, "--"), positional...)
}

func isLegacy(arg string, legacy []string) bool {
	if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
		return false
	}
	for _, name := range legacy {
		if arg[1:] == name {
			return true
		}
	}
	return false
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func takesValue(fs *pflag.FlagSet, arg string) bool {
	var f *pflag.Flag
	switch {
	case strings.HasPrefix(arg, "--"):
		f = fs.Lookup(arg[2:])
	case len(arg) == 2:
		f = fs.ShorthandLookup(arg[1:])
	}
	// bool flags carry an implicit value
	return f != nil && f.NoOptDefVal == ""
}
