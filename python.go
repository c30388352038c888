package mjbuild

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

const defaultPython = "python3"

// probeScript prints the interpreter facts CMake's FindPython3 needs.
const probeScript = `import json, sys, sysconfig
paths = sysconfig.get_paths()
print(json.dumps({
    "executable": sys.executable,
    "root": sys.prefix,
    "library": paths["stdlib"],
    "include": paths["include"],
    "ext_suffix": sysconfig.get_config_var("EXT_SUFFIX") or "",
}))`

// shOutput is replaced in tests.
var shOutput = sh.Output

// PythonProbe asks the interpreter at executable (default "python3") for its
// prefix, library and include paths and extension suffix.
func PythonProbe(executable string) (PythonConfig, error) {
	if executable == "" {
		executable = defaultPython
	}

	out, err := shOutput(executable, "-c", probeScript)
	if err != nil {
		return PythonConfig{}, &Error{Op: "probe python", Path: executable, Err: err}
	}

	var cfg PythonConfig
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &cfg); err != nil {
		return PythonConfig{}, &Error{Op: "probe python", Path: executable, Err: fmt.Errorf("parsing interpreter output: %w", err)}
	}
	if cfg.ExtSuffix == "" {
		return PythonConfig{}, &Error{Op: "probe python", Path: executable, Err: fmt.Errorf("%w: EXT_SUFFIX", ErrNotFound)}
	}

	return cfg, nil
}

// ResolvePython fills the empty fields of cfg by probing its interpreter.
// A complete cfg is returned unchanged without running anything.
func ResolvePython(cfg PythonConfig) (PythonConfig, error) {
	if cfg.Complete() {
		return cfg, nil
	}

	probed, err := PythonProbe(cfg.Executable)
	if err != nil {
		return cfg, err
	}
	return cfg.Merge(probed), nil
}
