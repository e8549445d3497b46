package cbytes

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ExecuteInstructions create the final value t with type T by
//
//   - Running every read function in order into a map, then
//   - Marshalling the map to JSON, and finally
//   - Unmarshalling the JSON into t
//
// so fixed layouts need no manual field mapping. The first failing read stops
// execution; nothing after it is consumed.
func ExecuteInstructions[T any](instructions []Instruction) (*T, error) {
	tMap := make(map[string]any, len(instructions))
	for _, instruction := range instructions {
		value, err := instruction.ReadFunction()
		if err != nil {
			err := errors.Wrapf(err, `ExecuteInstructions error reading key "%v"`, instruction.Key)
			return nil, err
		}
		tMap[instruction.Key] = value
	}
	tBytes, err := json.Marshal(tMap)
	if err != nil {
		err := errors.Wrapf(err, `ExecuteInstructions error marshalling map "%v" to JSON`, tMap)
		return nil, err
	}

	var t T
	if err := json.Unmarshal(tBytes, &t); err != nil {
		err := errors.Wrapf(
			err, `ExecuteInstructions error unmarshalling bytes "%s" to type "%T"`,
			string(tBytes), t,
		)
		return nil, err
	}

	return &t, nil
}

func CreateUint8ReadFunction(reader *Reader) ReadFunction {
	return func() (any, error) {
		return reader.ReadUint8()
	}
}

func CreateInt32ReadFunction(reader *Reader) ReadFunction {
	return func() (any, error) {
		return reader.ReadInt32()
	}
}

func CreateUint32ReadFunction(reader *Reader) ReadFunction {
	return func() (any, error) {
		return reader.ReadUint32()
	}
}
