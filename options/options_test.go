package options

import (
	"os"
	"path/filepath"
	"testing"

	"ufbtstate/obj"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOptions(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, obj.OptionsFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSubstituteThenTokenize(t *testing.T) {
	table := []Substitution{
		{Placeholder: "EP", Value: obj.AppEntryMacro},
		{Placeholder: "SDKROOT", Value: "/opt/sdk"},
	}

	testCases := []struct {
		description string
		raw         string
		expect      []string
	}{
		{
			description: "no placeholders",
			raw:         "-Os -Wall  -Iinclude",
			expect:      []string{"-Os", "-Wall", "-Iinclude"},
		},
		{
			description: "single app entry placeholder",
			raw:         "-DENTRY=EP -Iinclude",
			expect:      []string{"-DENTRY=${APP_ENTRY}", "-Iinclude"},
		},
		{
			description: "multiple occurrences",
			raw:         "EP -e EP SDKROOT/a SDKROOT/b",
			expect:      []string{"${APP_ENTRY}", "-e", "${APP_ENTRY}", "/opt/sdk/a", "/opt/sdk/b"},
		},
		{
			description: "empty string",
			raw:         "",
			expect:      []string{},
		},
	}

	for _, testCase := range testCases {
		actual := Tokenize(Substitute(testCase.raw, table))
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestSubstitute_ReplacesBeforeSplitting(t *testing.T) {
	table := []Substitution{{Placeholder: "A B", Value: "joined"}}
	assert.Equal(t, []string{"-x", "joined", "-y"}, Tokenize(Substitute("-x A B -y", table)))
}

func TestSubstitutionTable(t *testing.T) {
	table := SubstitutionTable("@EP@", "@SDK@", `C:\sdk\root`)
	require.Len(t, table, 2)
	assert.Equal(t, Substitution{Placeholder: "@EP@", Value: obj.AppEntryMacro}, table[0])
	assert.Equal(t, Substitution{Placeholder: "@SDK@", Value: "C:/sdk/root"}, table[1])
	assert.Equal(t, "C:/sdk/root/x ${APP_ENTRY}", Substitute("@SDK@/x @EP@", table))
}

func TestSubstitute_ReplacementNotRescanned(t *testing.T) {
	table := SubstitutionTable("EP", "SDKROOT", "/tmp/EPROM/state/sdk")
	assert.Equal(t, "/tmp/EPROM/state/sdk/sym.txt -D${APP_ENTRY}", Substitute("SDKROOT/sym.txt -DEP", table))
}

func TestLoad_SdkRootContainsAppEntryPlaceholder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "EPROM", "sdk")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := writeOptions(t, dir, `{"app_ep_subst":"EP","sdk_path_subst":"SDKROOT","hardware":"f7",
		"cc_args":"-DEP=EP","cpp_args":"","linker_args":"","linker_libs":"","sdk_symbols":"SDKROOT/sym.txt"}`)

	options, err := Load(path)
	require.NoError(t, err)

	sdkRoot, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{sdkRoot + "/sym.txt"}, options.SdkSymbols)
	assert.Equal(t, []string{"-D${APP_ENTRY}=${APP_ENTRY}"}, options.CcArgs)
}

func TestSubstitute_EmptyPlaceholderIgnored(t *testing.T) {
	table := SubstitutionTable("", "ROOT", "/sdk")
	assert.Equal(t, "-I/sdk/inc", Substitute("-IROOT/inc", table))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeOptions(t, dir, `{
		"app_ep_subst": "@APP_EP@",
		"sdk_path_subst": "@SDK@",
		"hardware": "7",
		"cc_args": "-D@APP_EP@ -I@SDK@/inc -I@SDK@/lib",
		"cpp_args": "-fno-rtti",
		"linker_args": "-T@SDK@/app.ld",
		"linker_libs": "c gcc",
		"sdk_symbols": "@SDK@/sdk.csv",
		"version": "0.1",
		"extra_count": 3
	}`)

	options, err := Load(path)
	require.NoError(t, err)

	sdkRoot, err := filepath.Abs(dir)
	require.NoError(t, err)

	assert.Equal(t, path, options.Path)
	assert.Equal(t, "7", options.Hardware)
	assert.Equal(t, "@APP_EP@", options.AppEntryPlaceholder)
	assert.Equal(t, []string{"-D${APP_ENTRY}", "-I" + sdkRoot + "/inc", "-I" + sdkRoot + "/lib"}, options.CcArgs)
	assert.Equal(t, []string{"-fno-rtti"}, options.CppArgs)
	assert.Equal(t, []string{"-T" + sdkRoot + "/app.ld"}, options.LinkerArgs)
	assert.Equal(t, []string{"c", "gcc"}, options.LinkerLibs)
	assert.Equal(t, []string{sdkRoot + "/sdk.csv"}, options.SdkSymbols)
	assert.Equal(t, map[string]any{"version": "0.1", "extra_count": float64(3)}, options.Extra)
}

func TestLoad_NumericHardware(t *testing.T) {
	path := writeOptions(t, t.TempDir(), `{"app_ep_subst":"EP","sdk_path_subst":"ROOT","hardware":7,
		"cc_args":"","cpp_args":"","linker_args":"","linker_libs":"","sdk_symbols":"sym.txt"}`)

	options, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7", options.Hardware)
	assert.Equal(t, []string{}, options.CcArgs)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", obj.OptionsFileName)

	_, err := Load(path)
	require.Error(t, err)

	var missing *obj.MissingFileError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, path, missing.Path)
}

func TestLoad_Malformed(t *testing.T) {
	testCases := []struct {
		description string
		content     string
	}{
		{
			description: "invalid JSON",
			content:     `{"app_ep_subst": `,
		},
		{
			description: "not an object",
			content:     `null`,
		},
		{
			description: "missing linker_libs",
			content:     `{"app_ep_subst":"EP","sdk_path_subst":"ROOT","hardware":"7","cc_args":"","cpp_args":"","linker_args":"","sdk_symbols":"s"}`,
		},
		{
			description: "missing hardware",
			content:     `{"app_ep_subst":"EP","sdk_path_subst":"ROOT","cc_args":"","cpp_args":"","linker_args":"","linker_libs":"","sdk_symbols":"s"}`,
		},
		{
			description: "list field is not a string",
			content:     `{"app_ep_subst":"EP","sdk_path_subst":"ROOT","hardware":"7","cc_args":["-O2"],"cpp_args":"","linker_args":"","linker_libs":"","sdk_symbols":"s"}`,
		},
		{
			description: "empty sdk_symbols",
			content:     `{"app_ep_subst":"EP","sdk_path_subst":"ROOT","hardware":"7","cc_args":"","cpp_args":"","linker_args":"","linker_libs":"","sdk_symbols":"  "}`,
		},
		{
			description: "trailing data after the object",
			content:     `{"app_ep_subst":"EP","sdk_path_subst":"ROOT","hardware":"7","cc_args":"","cpp_args":"","linker_args":"","linker_libs":"","sdk_symbols":"s"} trailing garbage`,
		},
		{
			description: "fractional hardware number",
			content:     `{"app_ep_subst":"EP","sdk_path_subst":"ROOT","hardware":7.5,"cc_args":"","cpp_args":"","linker_args":"","linker_libs":"","sdk_symbols":"s"}`,
		},
	}

	for _, testCase := range testCases {
		path := writeOptions(t, t.TempDir(), testCase.content)
		_, err := Load(path)
		assert.True(t, obj.IsMalformed(err), testCase.description)
	}
}
