// Package flagx lets several flag sets read the same command line. Each set
// parses only the flags it defines and skips everything else, so the JSON
// config path and the server flags can be parsed independently.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Parse parses the arguments of args that fs defines, written with one or
// two dashes, and ignores the rest. Bool flags never consume the following
// argument.
func Parse(fs *flag.FlagSet, args []string) error {
	takesValue := make(map[string]bool)
	fs.VisitAll(func(f *flag.Flag) {
		b, ok := f.Value.(interface{ IsBoolFlag() bool })
		takesValue[f.Name] = !ok || !b.IsBoolFlag()
	})
	return fs.Parse(filter(args, takesValue))
}

// ConfigPath returns the JSON config file named by -c or -config in args,
// or "" if neither is present. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to the JSON config file")
	fs.StringVar(&path, "c", "", "path to the JSON config file (short)")
	_ = Parse(fs, args)
	return path
}

// filter keeps the flags named in takesValue together with their values.
func filter(args []string, takesValue map[string]bool) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, inline := flagName(args[i])
		wantsValue, ok := takesValue[name]
		if !ok {
			continue
		}
		out = append(out, args[i])
		if wantsValue && !inline && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

// flagName returns the name of the flag in arg and whether arg carries its
// value after "=". Positional arguments and "--" have no name.
func flagName(arg string) (name string, inline bool) {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		return "", false
	}
	name = strings.TrimPrefix(arg[1:], "-")
	name, _, inline = strings.Cut(name, "=")
	return name, inline
}
