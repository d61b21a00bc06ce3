package config

// defaultOverrides lets downstream distributions change the defaults (e.g. a private base URL)
// without touching Default.
func defaultOverrides() StaticConfig {
	return StaticConfig{}
}
