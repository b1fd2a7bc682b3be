package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ufbtstate/obj"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatEnv  = "env"
	FormatArgs = "args"
)

var Formats = []string{FormatJSON, FormatYAML, FormatEnv, FormatArgs}

// Params names the resolved values the way the build environment expects
// them. Firmware artifacts are left out when the state has none.
func Params(cfg obj.ResolvedConfiguration) map[string]any {
	params := map[string]any{
		"SDK_DEFINITION":     cfg.SdkDefinition,
		"UFBT_STATE_DIR":     cfg.StateDir,
		"FBT_DEBUG_DIR":      cfg.DebugDir,
		"FBT_SCRIPT_DIR":     cfg.ScriptDir,
		"LIBPATH":            cfg.LibPath,
		"ROOT_DIR":           cfg.RootDir,
		"FIRMWARE_BUILD_CFG": cfg.FirmwareBuildCfg,
		"TARGET_HW":          cfg.TargetHW,
		"CFLAGS_APP":         cfg.CFlags,
		"CXXFLAGS_APP":       cfg.CxxFlags,
		"LINKFLAGS_APP":      cfg.LinkFlags,
		"LIBS":               cfg.Libs,
		"SCRIPT_SEARCH_PATH": cfg.ScriptSearchPath,
	}
	if cfg.FirmwareELF != "" {
		params["FW_ELF"] = cfg.FirmwareELF
	}
	if cfg.FirmwareBin != "" {
		params["FW_BIN"] = cfg.FirmwareBin
	}
	return params
}

// Merge returns env extended with the params it does not define yet.
// Values already present in env win; env itself is left untouched.
func Merge(env map[string]any, params map[string]any) map[string]any {
	merged := make(map[string]any, len(env)+len(params))
	for k, v := range params {
		merged[k] = v
	}
	for k, v := range env {
		merged[k] = v
	}
	return merged
}

func sortedKeys(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func formatValue(value any) string {
	switch v := value.(type) {
	case []string:
		return strings.Join(v, " ")
	case string:
		return v
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func Render(w io.Writer, params map[string]any, format string) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(params)
	case FormatYAML:
		data, err := yaml.Marshal(params)
		if err != nil {
			return fmt.Errorf("error marshaling params to YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatEnv:
		for _, k := range sortedKeys(params) {
			if _, err := fmt.Fprintf(w, "%s=%s\n", k, formatValue(params[k])); err != nil {
				return err
			}
		}
		return nil
	case FormatArgs:
		args := make([]string, 0, len(params))
		for _, k := range sortedKeys(params) {
			args = append(args, fmt.Sprintf("--%s=%s", k, quoteArg(formatValue(params[k]))))
		}
		_, err := fmt.Fprintln(w, strings.Join(args, " "))
		return err
	default:
		return fmt.Errorf("unsupported format %q, supported: %s", format, strings.Join(Formats, ", "))
	}
}

// quoteArg single-quotes values containing spaces or quotes for a POSIX shell.
func quoteArg(value string) string {
	if !strings.ContainsAny(value, " '\"$") {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
