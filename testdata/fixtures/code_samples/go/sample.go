package sample

import "fmt"

// Config holds the tunable knobs for a sample run.
type Config struct {
	Name    string
	Retries int
}

// NewConfig builds a Config with sane defaults, overridden by name.
func NewConfig(name string) *Config {
	return &Config{Name: name, Retries: 3}
}

// Display prints a human-readable summary of the config.
func (c *Config) Display() string {
	return fmt.Sprintf("%s (retries=%d)", c.Name, c.Retries)
}

func helper(x int) int {
	return x + 1
}

func main() {
	cfg := NewConfig("demo")
	fmt.Println(cfg.Display())
	fmt.Println(helper(41))
}
