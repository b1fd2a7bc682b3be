// Package options reads the SDK options descriptor (sdk.opts) and turns its
// space-delimited argument strings into token lists.
package options

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ufbtstate/obj"
	"ufbtstate/rt"
	"ufbtstate/tools"

	"golang.org/x/exp/slices"
)

const (
	keyAppEntry   = "app_ep_subst"
	keySdkPath    = "sdk_path_subst"
	keyHardware   = "hardware"
	keyCcArgs     = "cc_args"
	keyCppArgs    = "cpp_args"
	keyLinkerArgs = "linker_args"
	keyLinkerLibs = "linker_libs"
	keySdkSymbols = "sdk_symbols"
)

// ListKeys are the fields that get substituted and tokenized.
var ListKeys = []string{keyCcArgs, keyCppArgs, keyLinkerArgs, keyLinkerLibs, keySdkSymbols}

type Substitution struct {
	Placeholder string
	Value       string
}

// SubstitutionTable maps the app entry placeholder to ${APP_ENTRY} and the sdk
// path placeholder to sdkRoot with forward slashes. When both placeholders
// match at the same position the earlier entry wins.
func SubstitutionTable(appEntryPlaceholder, sdkPathPlaceholder, sdkRoot string) []Substitution {
	return []Substitution{
		{Placeholder: appEntryPlaceholder, Value: obj.AppEntryMacro},
		{Placeholder: sdkPathPlaceholder, Value: tools.NormalizeSeparators(sdkRoot)},
	}
}

// Substitute applies every table entry to the whole raw string in a single
// pass; replaced text is never scanned again.
func Substitute(raw string, table []Substitution) string {
	pairs := make([]string, 0, 2*len(table))
	for _, subst := range table {
		if subst.Placeholder == "" {
			continue
		}
		pairs = append(pairs, subst.Placeholder, subst.Value)
	}
	if len(pairs) == 0 {
		return raw
	}
	return strings.NewReplacer(pairs...).Replace(raw)
}

// Tokenize splits on single spaces and drops empty segments.
func Tokenize(value string) []string {
	tokens := []string{}
	for _, token := range strings.Split(value, " ") {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func readDescriptor(path string) (map[string]any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &obj.MissingFileError{Path: path, Err: err}
	}
	defer file.Close()

	var content map[string]any
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&content); err != nil {
		return nil, &obj.MalformedDescriptorError{Path: path, Reason: "invalid JSON", Err: err}
	}
	if decoder.More() {
		return nil, &obj.MalformedDescriptorError{Path: path, Reason: "trailing data after JSON value"}
	}
	if content == nil {
		return nil, &obj.MalformedDescriptorError{Path: path, Reason: "descriptor is not a JSON object"}
	}
	return content, nil
}

func stringField(path string, content map[string]any, key string) (string, error) {
	value, ok := content[key]
	if !ok {
		return "", &obj.MalformedDescriptorError{Path: path, Reason: fmt.Sprintf("missing key %q", key)}
	}
	str, ok := value.(string)
	if !ok {
		return "", &obj.MalformedDescriptorError{Path: path, Reason: fmt.Sprintf("key %q must be a string, got %T", key, value)}
	}
	return str, nil
}

func hardwareField(path string, content map[string]any) (string, error) {
	switch v := content[keyHardware].(type) {
	case string:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return "", &obj.MalformedDescriptorError{Path: path, Reason: fmt.Sprintf("key %q must be an integer, got %v", keyHardware, v)}
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case nil:
		return "", &obj.MalformedDescriptorError{Path: path, Reason: fmt.Sprintf("missing key %q", keyHardware)}
	default:
		return "", &obj.MalformedDescriptorError{Path: path, Reason: fmt.Sprintf("key %q must be a string, got %T", keyHardware, v)}
	}
}

// Load parses the options file at path. The sdk path placeholder is replaced
// with the absolute directory containing the file.
func Load(path string) (obj.SdkOptions, error) {
	if rt.Config.DebugMode {
		log.Printf("Loading SDK options: %s\n", path)
	}

	content, err := readDescriptor(path)
	if err != nil {
		return obj.SdkOptions{}, err
	}

	options := obj.SdkOptions{Path: path, Extra: make(map[string]any)}
	if options.AppEntryPlaceholder, err = stringField(path, content, keyAppEntry); err != nil {
		return obj.SdkOptions{}, err
	}
	if options.SdkPathPlaceholder, err = stringField(path, content, keySdkPath); err != nil {
		return obj.SdkOptions{}, err
	}
	if options.Hardware, err = hardwareField(path, content); err != nil {
		return obj.SdkOptions{}, err
	}

	sdkRoot, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return obj.SdkOptions{}, fmt.Errorf("failed to resolve SDK root for %s: %w", path, err)
	}
	table := SubstitutionTable(options.AppEntryPlaceholder, options.SdkPathPlaceholder, sdkRoot)

	lists := make(map[string][]string, len(ListKeys))
	for _, key := range ListKeys {
		raw, err := stringField(path, content, key)
		if err != nil {
			return obj.SdkOptions{}, err
		}
		lists[key] = Tokenize(Substitute(raw, table))
	}
	options.CcArgs = lists[keyCcArgs]
	options.CppArgs = lists[keyCppArgs]
	options.LinkerArgs = lists[keyLinkerArgs]
	options.LinkerLibs = lists[keyLinkerLibs]
	options.SdkSymbols = lists[keySdkSymbols]

	if len(options.SdkSymbols) == 0 {
		return obj.SdkOptions{}, &obj.MalformedDescriptorError{Path: path, Reason: "no SDK symbol definition file"}
	}

	for key, value := range content {
		if !isKnownKey(key) {
			options.Extra[key] = value
		}
	}

	if rt.Config.DebugMode {
		log.Printf("SDK options loaded: hardware %s, %d cc args, %d linker args\n",
			options.Hardware, len(options.CcArgs), len(options.LinkerArgs))
	}
	return options, nil
}

func isKnownKey(key string) bool {
	switch key {
	case keyAppEntry, keySdkPath, keyHardware:
		return true
	}
	return slices.Contains(ListKeys, key)
}
