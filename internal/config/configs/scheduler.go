package configs

// Scheduler configures the activation scheduler. Workers bounds how many
// activation tasks may run concurrently.
type Scheduler struct {
	Workers int `env:"WORKERS" envDefault:"10"`
}
