// main is the entry point for the skillscope CLI.
package main

import (
	"github.com/mkohari/skillscope/cmd"
	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/internal/trendstore"
)

func main() {
	err := cmd.Execute()

	// Flush profiles and release the store before deciding the exit code,
	// since LogFatal skips deferred calls.
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Could not stop profiling", perr)
	}
	trendstore.CloseStore()

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
