// Package assemble resolves an installed SDK state into the configuration an
// application build consumes: SDK paths, firmware artifacts, compiler and
// linker flags and the numeric hardware target.
//
// Resolution is a single pass. The state descriptor is read first to locate
// the options descriptor, both are cross-checked, and the result is returned
// whole or not at all. Nothing outside the returned value is modified; in
// particular the script directory is reported through ScriptSearchPath
// rather than registered anywhere.
package assemble

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ufbtstate/obj"
	"ufbtstate/options"
	"ufbtstate/rt"
	"ufbtstate/state"
	"ufbtstate/target"
	"ufbtstate/tools"
)

type Input struct {
	// StateDir defaults to .ufbt/current relative to the working directory.
	StateDir string
	// StateFileName defaults to sdk_state.json.
	StateFileName string
	// RootDir is the application project root; defaults to the working directory.
	RootDir string
}

func (in Input) withDefaults() (Input, error) {
	if in.StateDir == "" {
		in.StateDir = obj.DefaultStateDir
	}
	if in.StateFileName == "" {
		in.StateFileName = obj.DefaultStateFileName
	}
	if in.RootDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return in, err
		}
		in.RootDir = cwd
	}

	var err error
	if in.StateDir, err = filepath.Abs(in.StateDir); err != nil {
		return in, err
	}
	if in.RootDir, err = filepath.Abs(in.RootDir); err != nil {
		return in, err
	}
	return in, nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func Assemble(in Input) (obj.ResolvedConfiguration, error) {
	in, err := in.withDefaults()
	if err != nil {
		return obj.ResolvedConfiguration{}, fmt.Errorf("failed to resolve SDK locations: %w", err)
	}

	statePath := filepath.Join(in.StateDir, in.StateFileName)
	sdkState, err := state.Load(statePath)
	if err != nil {
		return obj.ResolvedConfiguration{}, err
	}

	sdkRoot := resolve(in.StateDir, sdkState.Component(obj.ComponentSdk, obj.DefaultSdkComponent))
	sdkOptions, err := options.Load(filepath.Join(sdkRoot, obj.OptionsFileName))
	if err != nil {
		return obj.ResolvedConfiguration{}, err
	}

	if err := target.Check(sdkState, sdkOptions); err != nil {
		return obj.ResolvedConfiguration{}, err
	}

	targetHW, err := target.ParseHardware(sdkOptions.Hardware)
	if err != nil {
		return obj.ResolvedConfiguration{}, &obj.MalformedDescriptorError{Path: sdkOptions.Path, Reason: "invalid hardware", Err: err}
	}

	scriptsRoot := resolve(in.StateDir, sdkState.Component(obj.ComponentScripts, obj.DefaultScriptsComponent))
	cfg := obj.ResolvedConfiguration{
		StateDir:         in.StateDir,
		RootDir:          in.RootDir,
		ScriptDir:        filepath.Join(scriptsRoot, "scripts"),
		DebugDir:         tools.NormalizeSeparators(filepath.Join(scriptsRoot, "debug")),
		LibPath:          resolve(in.StateDir, sdkState.Component(obj.ComponentLib, obj.DefaultLibComponent)),
		SdkDefinition:    resolve(in.RootDir, sdkOptions.SdkSymbols[0]),
		CFlags:           sdkOptions.CcArgs,
		CxxFlags:         sdkOptions.CppArgs,
		LinkFlags:        sdkOptions.LinkerArgs,
		Libs:             sdkOptions.LinkerLibs,
		TargetHW:         targetHW,
		HardwareID:       sdkOptions.Hardware,
		FirmwareBuildCfg: obj.FirmwareBuildCfg,
	}
	cfg.ScriptSearchPath = cfg.ScriptDir
	cfg.SetStatePath(statePath)

	if elf, ok := sdkState.Components[obj.ComponentElf]; ok && elf != "" {
		cfg.FirmwareELF = resolve(in.StateDir, elf)
	}
	if bin, ok := sdkState.Components[obj.ComponentFwBin]; ok && bin != "" {
		cfg.FirmwareBin = resolve(in.StateDir, bin)
	}
	if sum, ok := sdkState.Meta.Extra["fwbin_sha256"].(string); ok {
		cfg.FirmwareBinSHA256 = sum
	}

	if len(sdkOptions.SdkSymbols) > 1 {
		warning := fmt.Sprintf("%s: sdk_symbols has %d entries, using %s",
			sdkOptions.Path, len(sdkOptions.SdkSymbols), sdkOptions.SdkSymbols[0])
		log.Printf("Warning: %s\n", warning)
		cfg.Warnings = append(cfg.Warnings, warning)
	}

	if rt.Config.DebugMode {
		log.Printf("SDK state %s resolved for hardware %d\n", in.StateDir, cfg.TargetHW)
	}
	return cfg, nil
}
