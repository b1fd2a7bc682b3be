package rt

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ufbtstate/obj"

	"gopkg.in/yaml.v2"
)

var Config obj.RuntimeConfig

func readWorkspaceConfig(workspaceDir string) (obj.WorkspaceConfig, error) {
	workspaceConfig := obj.WorkspaceConfig{}

	workspaceFile, err := os.Open(filepath.Join(workspaceDir, obj.WorkspaceFileName))
	if err != nil {
		return workspaceConfig, err
	}
	defer workspaceFile.Close()

	err = yaml.NewDecoder(workspaceFile).Decode(&workspaceConfig)
	if err != nil && !errors.Is(err, io.EOF) {
		return workspaceConfig, fmt.Errorf("failed to decode %s: %w", obj.WorkspaceFileName, err)
	}

	workspaceConfig.StateDir = resolveWorkspacePath(workspaceDir, workspaceConfig.StateDir)
	workspaceConfig.RootDir = resolveWorkspacePath(workspaceDir, workspaceConfig.RootDir)

	return workspaceConfig, nil
}

// resolveWorkspacePath anchors a relative path at the workspace directory;
// a leading // also means the workspace directory.
func resolveWorkspacePath(workspaceDir, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "//") {
		return filepath.Join(workspaceDir, path[2:])
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspaceDir, path)
}

func detectWorkspaceRoot(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, obj.WorkspaceFileName)); err == nil {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Init fills Config starting the workspace lookup at cwd. Without a workspace
// file the project root is cwd and the default state location applies.
func Init(cwd string) error {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return err
	}

	Config.ProjectRoot = cwd
	Config.StateDir = filepath.Join(cwd, obj.DefaultStateDir)
	Config.StateFile = obj.DefaultStateFileName
	Config.WorkspaceConfig = obj.WorkspaceConfig{}

	workspaceDir, found := detectWorkspaceRoot(cwd)
	if !found {
		if Config.DebugMode {
			log.Printf("No %s found above %s, using defaults\n", obj.WorkspaceFileName, cwd)
		}
		return nil
	}

	workspaceConfig, err := readWorkspaceConfig(workspaceDir)
	if err != nil {
		return err
	}
	if Config.DebugMode {
		log.Printf("Workspace file found in %s\n", workspaceDir)
	}

	Config.WorkspaceConfig = workspaceConfig
	Config.ProjectRoot = workspaceDir
	Config.StateDir = filepath.Join(workspaceDir, obj.DefaultStateDir)
	if workspaceConfig.RootDir != "" {
		Config.ProjectRoot = workspaceConfig.RootDir
	}
	if workspaceConfig.StateDir != "" {
		Config.StateDir = workspaceConfig.StateDir
	}
	if workspaceConfig.StateFile != "" {
		Config.StateFile = workspaceConfig.StateFile
	}

	return nil
}
