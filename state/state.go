// Package state reads the SDK state descriptor (sdk_state.json) of an
// installed SDK snapshot.
package state

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"ufbtstate/obj"
	"ufbtstate/rt"
)

type stateFile struct {
	Meta       map[string]any  `json:"meta"`
	Components json.RawMessage `json:"components"`
}

func Load(path string) (obj.SdkState, error) {
	if rt.Config.DebugMode {
		log.Printf("Loading SDK state: %s\n", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return obj.SdkState{}, &obj.MissingFileError{Path: path, Err: err}
	}
	defer file.Close()

	var raw stateFile
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&raw); err != nil {
		return obj.SdkState{}, &obj.MalformedDescriptorError{Path: path, Reason: "invalid JSON", Err: err}
	}
	if decoder.More() {
		return obj.SdkState{}, &obj.MalformedDescriptorError{Path: path, Reason: "trailing data after JSON value"}
	}

	components, err := parseComponents(path, raw.Components)
	if err != nil {
		return obj.SdkState{}, err
	}

	meta, err := parseMeta(path, raw.Meta)
	if err != nil {
		return obj.SdkState{}, err
	}

	if rt.Config.DebugMode {
		log.Printf("SDK state loaded: hw_target %s, %d components\n", meta.HwTarget, len(components))
	}
	return obj.SdkState{Path: path, Meta: meta, Components: components}, nil
}

func parseComponents(path string, data json.RawMessage) (map[string]string, error) {
	noComponents := &obj.MalformedDescriptorError{Path: path, Reason: "no components data"}
	if len(data) == 0 || string(data) == "null" {
		return nil, noComponents
	}

	var entries map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &obj.MalformedDescriptorError{Path: path, Reason: "components must be an object", Err: err}
	}
	if len(entries) == 0 {
		return nil, noComponents
	}

	components := make(map[string]string, len(entries))
	for name, value := range entries {
		str, ok := value.(string)
		if !ok {
			return nil, &obj.MalformedDescriptorError{Path: path, Reason: fmt.Sprintf("component %q must be a string, got %T", name, value)}
		}
		components[name] = str
	}
	return components, nil
}

func parseMeta(path string, meta map[string]any) (obj.StateMeta, error) {
	if meta == nil {
		return obj.StateMeta{}, &obj.MalformedDescriptorError{Path: path, Reason: "missing key \"meta\""}
	}

	hwTarget, ok := meta["hw_target"].(string)
	if !ok {
		return obj.StateMeta{}, &obj.MalformedDescriptorError{Path: path, Reason: "missing string key \"meta.hw_target\""}
	}

	extra := make(map[string]any, len(meta))
	for key, value := range meta {
		if key != "hw_target" {
			extra[key] = value
		}
	}
	return obj.StateMeta{HwTarget: hwTarget, Extra: extra}, nil
}
