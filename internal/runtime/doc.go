// Package runtime wires storage, config, and per-document sequencers into
// a single-node docstream sequencer host. It exposes Open/Close, a basic
// health check, and OpenSequencer for handing sequencer handles to the
// gRPC service layer.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	seq, _ := rt.OpenSequencer("doc-1")
//	msg, _ := seq.Submit(context.Background(), v1.Op{MessageType: "insert", Content: []byte("hi")})
package runtime
