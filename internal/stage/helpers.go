package stage

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"storyreel/internal/services"
)

// DecodeColumn parses a JSON payload persisted on a queue item by an earlier
// stage. On failure it returns a services.ErrValidation suitable for stage
// Execute methods, naming the stage that should be rerun.
func DecodeColumn(raw, stageName, operation, rerunHint string, target any) error {
	if strings.TrimSpace(raw) == "" {
		return services.Wrap(
			services.ErrValidation, stageName, operation,
			fmt.Sprintf("Required pipeline data missing; %s", rerunHint), nil)
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return services.Wrap(
			services.ErrValidation, stageName, operation,
			fmt.Sprintf("Pipeline data corrupt; %s", rerunHint), err)
	}
	return nil
}

// EncodeColumn marshals a value for storage in a queue item JSON column.
func EncodeColumn(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode pipeline data: %w", err)
	}
	return string(data), nil
}

// BinaryHealth reports stage readiness based on an external binary being
// resolvable. Absolute paths are accepted as-is; bare names are looked up on
// PATH.
func BinaryHealth(stageName, binary string) Health {
	if strings.TrimSpace(binary) == "" {
		return Unhealthy(stageName, "binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return Unhealthy(stageName, fmt.Sprintf("%s not found: %v", binary, err))
	}
	return Healthy(stageName)
}
