package storage

import (
	"encoding/json"
	"errors"
)

// CurrentSchemaVersion is stamped into every saved run and checked on
// decode.
const CurrentSchemaVersion = 1

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(run Run) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (Run, error) {
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, err
	}
	if run.SchemaVersion != CurrentSchemaVersion {
		return Run{}, ErrVersionMismatch
	}
	return run, nil
}
