package config

import "fmt"

// Validate checks configuration correctness. It performs declarative
// validation only and must not mutate cfg.
func Validate(cfg *Config) error {
	if cfg.Listen.Port < 0 || cfg.Listen.Port > 65535 {
		return fmt.Errorf("listen: port %d out of range", cfg.Listen.Port)
	}

	if cfg.Hardware.Enabled {
		if cfg.Hardware.Port == "" {
			return fmt.Errorf("hardware: enabled but no port given")
		}
		if cfg.Hardware.BaudRate <= 0 {
			return fmt.Errorf("hardware: enabled but baud_rate is %d", cfg.Hardware.BaudRate)
		}
	}

	return nil
}
