package ds

import (
	"fmt"

	"github.com/goccy/go-json"
)

func DumpJSON[T any](t T) string {
	tBytes, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("DumpJSON error %w", err).Error()
	}

	return string(tBytes)
}

func DumpJSONIndent[T any](t T, indent string) ([]byte, error) {
	tBytes, err := json.MarshalIndent(t, "", indent)
	if err != nil {
		return nil, fmt.Errorf("DumpJSONIndent error %w", err)
	}
	return tBytes, nil
}
