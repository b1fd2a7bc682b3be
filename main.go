package main

import (
	"fmt"
	"log"
	"os"

	"ufbtstate/assemble"
	"ufbtstate/rt"
	"ufbtstate/runner"
	"ufbtstate/tools"

	"github.com/spf13/pflag"
)

func main() {
	stateDirFlag := pflag.StringP("state-dir", "s", "", "SDK state directory (default .ufbt/current)")
	stateFileFlag := pflag.StringP("state-file", "f", "", "name of the SDK state file (default sdk_state.json)")
	formatFlag := pflag.StringP("format", "o", runner.FormatEnv, "output format: json, yaml, env or args")
	debugModeFlag := pflag.BoolP("debug", "d", false, "debug mode")
	checkArtifactsFlag := pflag.BoolP("check-artifacts", "a", false, "verify firmware ELF and binary artifacts")

	pflag.Parse()

	rt.Config.DebugMode = *debugModeFlag

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("Error getting working directory: %s\n", err.Error())
	}
	if err := rt.Init(cwd); err != nil {
		log.Fatalf("Error reading workspace file: %s\n", err.Error())
	}

	if *stateDirFlag != "" {
		rt.Config.StateDir = *stateDirFlag
	}
	if *stateFileFlag != "" {
		rt.Config.StateFile = *stateFileFlag
	}
	if rt.Config.DebugMode {
		log.Printf("Using SDK state %s/%s\n", rt.Config.StateDir, rt.Config.StateFile)
	}

	cfg, err := assemble.Assemble(assemble.Input{
		StateDir:      rt.Config.StateDir,
		StateFileName: rt.Config.StateFile,
		RootDir:       rt.Config.ProjectRoot,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving SDK state: %s\n", err.Error())
		os.Exit(1)
	}

	if *checkArtifactsFlag {
		if err := tools.VerifyArtifacts(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error verifying firmware artifacts: %s\n", err.Error())
			os.Exit(1)
		}
	}

	if err := runner.Render(os.Stdout, runner.Params(cfg), *formatFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering build parameters: %s\n", err.Error())
		os.Exit(1)
	}
}
