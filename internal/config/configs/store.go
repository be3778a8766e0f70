package configs

// Store configures the record store holding accounts, campaigns and
// schedules. Path points at a single bbolt file; its directory is created
// on open.
type Store struct {
	Path string `env:"PATH" envDefault:"data/state.db"`
}
