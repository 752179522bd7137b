package cmd

import (
	"flag"

	"github.com/etnz/finvault/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors are the predictions of flag values by flag name.
var flagPredictors = map[string]complete.Predictor{
	"method": predict.Set{"fifo", "average"},
	"config": predict.Files("*.yaml"),
	"db":     predict.Files("*"),
	"legacy": predict.Files("*"),
	"flag":   predict.Files("*"),
	"d":      predict.Something,
}

// flags returns the completion of every flag of fs.
func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			m[f.Name] = predict.Nothing
			return
		}
		if p, ok := flagPredictors[f.Name]; ok {
			m[f.Name] = p
			return
		}
		m[f.Name] = predict.Something
	})
	return m
}

// Completion describes the commands of c for shell completion.
func Completion(c *subcommands.Commander, top *flag.FlagSet) *complete.Command {
	root := &complete.Command{Sub: make(map[string]*complete.Command), Flags: flags(top)}
	c.VisitCommands(func(_ *subcommands.CommandGroup, sc subcommands.Command) {
		fs := flag.NewFlagSet(sc.Name(), flag.ContinueOnError)
		sc.SetFlags(fs)
		sub := &complete.Command{Flags: flags(fs)}
		if sc.Name() == "topic" {
			sub.Args = predict.Set(topicNames())
		}
		root.Sub[sc.Name()] = sub
	})
	return root
}

func topicNames() []string {
	names, _ := docs.All()
	return append([]string{"readme", "*"}, names...)
}
