package config

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied.
func MergeConfig(target, source *Config, sourceType string) {
	if source == nil {
		return
	}

	if source.URL != "" {
		target.URL = source.URL
		target.Mark("url", sourceType)
	}
	if source.Resource != "" {
		target.Resource = source.Resource
		target.Mark("resource", sourceType)
	}
	if source.Timeout != 0 {
		target.Timeout = source.Timeout
		target.Mark("timeout", sourceType)
	}
	if boolIsSet(source, "json") {
		target.JSON = source.JSON
		target.Mark("json", sourceType)
	}
	if source.Log.Level != "" {
		target.Log.Level = source.Log.Level
		target.Mark("log.level", sourceType)
	}
	if source.Log.Format != "" {
		target.Log.Format = source.Log.Format
		target.Mark("log.format", sourceType)
	}
	if source.Log.File != "" {
		target.Log.File = source.Log.File
		target.Mark("log.file", sourceType)
	}
	if source.Server.Addr != "" {
		target.Server.Addr = source.Server.Addr
		target.Mark("server.addr", sourceType)
	}
	if source.Server.IDStyle != "" {
		target.Server.IDStyle = source.Server.IDStyle
		target.Mark("server.idStyle", sourceType)
	}
	if source.Server.MaxItems != 0 {
		target.Server.MaxItems = source.Server.MaxItems
		target.Mark("server.maxItems", sourceType)
	}
	if source.Server.RateLimit != 0 {
		target.Server.RateLimit = source.Server.RateLimit
		target.Mark("server.rateLimit", sourceType)
	}
	if source.Server.SeedFile != "" {
		target.Server.SeedFile = source.Server.SeedFile
		target.Mark("server.seedFile", sourceType)
	}
	if len(source.Server.Seed) > 0 {
		target.Server.Seed = append(target.Server.Seed[:0:0], source.Server.Seed...)
		target.Mark("server.seed", sourceType)
	}
}

// boolIsSet reports whether a boolean key was explicitly set in the source.
// Without SetFields (a config built in code) only true counts as set.
func boolIsSet(cfg *Config, key string) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[key]
	}
	switch key {
	case "json":
		return cfg.JSON
	}
	return false
}
