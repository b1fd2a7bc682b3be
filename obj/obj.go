package obj

import "fmt"

const (
	DefaultStateDir      = ".ufbt/current"
	DefaultStateFileName = "sdk_state.json"
	OptionsFileName      = "sdk.opts"
	WorkspaceFileName    = "ufbt.workspace.yaml"
	AppEntryMacro        = "${APP_ENTRY}"
	FirmwareBuildCfg     = "firmware"
)

// Component keys of the state descriptor and the fallbacks used when a key is absent.
const (
	ComponentSdk     = "sdk"
	ComponentScripts = "scripts"
	ComponentLib     = "lib"
	ComponentElf     = "elf"
	ComponentFwBin   = "fwbin"

	DefaultSdkComponent     = "sdk"
	DefaultScriptsComponent = "."
	DefaultLibComponent     = "lib"
)

type RuntimeConfig struct {
	WorkspaceConfig WorkspaceConfig
	DebugMode       bool
	ProjectRoot     string
	StateDir        string
	StateFile       string
}

type WorkspaceConfig struct {
	StateDir  string `yaml:"state_dir"`
	StateFile string `yaml:"state_file"`
	RootDir   string `yaml:"root_dir"`
}

type SdkOptions struct {
	Path                string
	AppEntryPlaceholder string
	SdkPathPlaceholder  string
	Hardware            string
	CcArgs              []string
	CppArgs             []string
	LinkerArgs          []string
	LinkerLibs          []string
	SdkSymbols          []string
	Extra               map[string]any
}

type StateMeta struct {
	HwTarget string
	Extra    map[string]any
}

type SdkState struct {
	Path       string
	Meta       StateMeta
	Components map[string]string
}

// Component returns the relative path registered for name, or fallback when
// the state does not list it.
func (s SdkState) Component(name, fallback string) string {
	if value, ok := s.Components[name]; ok {
		return value
	}
	return fallback
}

type ResolvedConfiguration struct {
	StateDir          string
	RootDir           string
	ScriptDir         string
	DebugDir          string
	LibPath           string
	FirmwareELF       string
	FirmwareBin       string
	FirmwareBinSHA256 string // from meta.fwbin_sha256, when present
	SdkDefinition     string
	CFlags            []string
	CxxFlags          []string
	LinkFlags         []string
	Libs              []string
	TargetHW          int
	HardwareID        string
	FirmwareBuildCfg  string
	ScriptSearchPath  string
	Warnings          []string

	statePath string
}

// SetStatePath records the descriptor the configuration was resolved from, so
// that errors raised when dereferencing optional artifacts can name it.
func (c *ResolvedConfiguration) SetStatePath(path string) {
	c.statePath = path
}

func (c ResolvedConfiguration) ELF() (string, error) {
	if c.FirmwareELF == "" {
		return "", &MalformedDescriptorError{Path: c.statePath, Reason: fmt.Sprintf("no %q component", ComponentElf)}
	}
	return c.FirmwareELF, nil
}

func (c ResolvedConfiguration) Bin() (string, error) {
	if c.FirmwareBin == "" {
		return "", &MalformedDescriptorError{Path: c.statePath, Reason: fmt.Sprintf("no %q component", ComponentFwBin)}
	}
	return c.FirmwareBin, nil
}
