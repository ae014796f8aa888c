package log

// Field is a single piece of structured context attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// Str creates a string Field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an int Field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 creates an int64 Field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Uint64 creates a uint64 Field.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Bool creates a bool Field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Err creates an "error" Field from an error value.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a Field from an arbitrary value.
func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Component creates the conventional "component" Field used to tag the
// subsystem emitting a log line (e.g. "pending", "sequencer", "grpc").
func Component(name string) Field { return Field{Key: ComponentKey, Value: name} }

// Operation creates the conventional "operation" Field used to tag the
// state-machine method or RPC handling a call.
func Operation(name string) Field { return Field{Key: OperationKey, Value: name} }

// DocID tags the document a log line concerns.
func DocID(id string) Field { return Field{Key: "docId", Value: id} }

// ClientID tags the client id a log line concerns, which may be the id a
// prior session rehydrated under rather than the current connection's own.
func ClientID(id string) Field { return Field{Key: "clientId", Value: id} }

// ClientSeq tags a client sequence number, the per-client op ordinal
// assigned at submission time.
func ClientSeq(csn int64) Field { return Field{Key: "csn", Value: csn} }

// GlobalSeq tags a global sequence number, the total order position a
// sequencer assigns once an op is durably appended.
func GlobalSeq(seq int64) Field { return Field{Key: "seq", Value: seq} }

func fieldsToMap(fields []Field) Fields {
	if len(fields) == 0 {
		return nil
	}
	out := make(Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

func mergeFields(base Fields, extra Fields) Fields {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(Fields, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
