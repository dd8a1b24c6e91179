package credentials

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cast"
)

// settingsFile is the subset of the assistant's local settings we read.
type settingsFile struct {
	Env map[string]any `json:"env"`
}

// LoadSettingsEnv reads the recognized keys of a settings file's env mapping.
// Other keys are not inspected. A missing file yields no values and no error.
func LoadSettingsEnv(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var s settingsFile
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	env := make(map[string]string)
	for _, k := range RecognizedKeys {
		v, ok := s.Env[k]
		if !ok {
			continue
		}
		str, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("settings file %s: env.%s is not a scalar value", path, k)
		}
		env[k] = str
	}
	return env, nil
}
