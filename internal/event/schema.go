package event

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

// logSchema constrains event-log files before they reach the merge core.
// Payload fields (before/after/metadata) are deliberately open: their
// shape belongs to the caller's collections, not to this layer.
const logSchema = `
#Event: {
	id:     string & !=""
	ts:     int & >=0
	op:     "CREATE" | "UPDATE" | "DELETE" | "REL_CREATE" | "REL_DELETE"
	target: string & =~"^[^:\\s]+:[^:\\s]+$"
	actor:  string
	before?:   _
	after?:    _
	metadata?: _
}

#Log: [...#Event]
`

// ValidateLog checks a JSON event-log document (an array of events)
// against the log schema. Returns nil for an empty array.
func ValidateLog(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(logSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile event-log schema: %w", err)
	}

	logVal := schema.LookupPath(cue.ParsePath("#Log"))
	if err := logVal.Err(); err != nil {
		return fmt.Errorf("lookup event-log schema: %w", err)
	}

	if err := cuejson.Validate(data, logVal); err != nil {
		return fmt.Errorf("event log does not match schema: %w", err)
	}
	return nil
}
