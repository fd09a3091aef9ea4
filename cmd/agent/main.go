package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
)

// Options is the root command that groups sub-commands. The struct tags are
// interpreted by github.com/jessevdk/go-flags.
type Options struct {
	Config string     `short:"f" long:"config" description:"agent config YAML path"`
	Serve  *ServeCmd  `command:"serve" description:"Start the HTTP server"`
	Run    *RunCmd    `command:"run" description:"Build an app from a request and print the output trace"`
	Models *ModelsCmd `command:"models" description:"List known models"`
}

// Init instantiates the sub-command referenced by the first argument so that
// flags.Parse can populate its fields.
func (o *Options) Init(firstArg string) {
	switch firstArg {
	case "serve":
		o.Serve = &ServeCmd{root: o}
	case "run":
		o.Run = &RunCmd{root: o}
	case "models":
		o.Models = &ModelsCmd{}
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts := &Options{}
	if first := firstCommand(args); first != "" {
		opts.Init(first)
	}
	parser := flags.NewParser(opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}
	return 0
}

// firstCommand returns the first argument that is not a flag or a flag value.
func firstCommand(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-f" || a == "--config":
			i++
		case len(a) > 0 && a[0] == '-':
		default:
			return a
		}
	}
	return ""
}
