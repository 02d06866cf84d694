// Package config provides the configuration system for bbuf.
//
// Settings are identified by dotted paths and come from three sources,
// later ones overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← BBUF_*, highest priority
//	├─────────────────────────────┤
//	│  2. Configuration File      │  ← --config bbuf.toml / bbuf.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Every value is checked against a table of known settings when it is
// loaded and converted to its Go type, so an int in YAML, an int64 in
// TOML and the string "65536" in the environment all read back as int.
//
// # Settings
//
//	logging.level           string    trace|debug|info|warn|error|...
//	logging.format          string    console|json
//	logging.output          string    stderr|stdout|<path>
//	buffer.windowSize       int       read window capacity in bytes
//	buffer.maxScratch       int       transcoding scratch cap, 0 for none
//	buffer.narrowCodeUnits  bool      truncate characters to 16 bits
//	engine.maxUndo          int       undo entries kept per document
//	engine.readOnly         bool      reject edits and saves
//	engine.encoding         string    save encoding, empty keeps the source's
//	engine.watchDelay       duration  external change debounce
//
// # Basic Usage
//
//	cfg := config.New(config.WithFile("bbuf.toml"))
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	buf := cfg.Buffer()
//	fmt.Println(buf.WindowSize)
//
// # Environment Variables
//
// Short names are mapped explicitly (BBUF_LOG_LEVEL, BBUF_WINDOW_SIZE,
// BBUF_MAX_UNDO, ...). Any other BBUF_ variable is mapped by converting
// underscores to path separators and camel case, so
// BBUF_BUFFER_MAX_SCRATCH sets buffer.maxScratch. Variables that name no
// known setting are ignored.
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment variable loading
package config
