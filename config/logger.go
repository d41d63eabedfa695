package config

import (
	"github.com/spf13/viper"
)

// Logger logger config struct
type Logger struct {
	Level      string `validate:"omitempty,oneof=trace debug info warn error fatal panic"`
	Format     string `validate:"omitempty,oneof=text json"`
	Output     string
	OutputFile string
}

func getLoggerConfig(v *viper.Viper) *Logger {
	return &Logger{
		Level:      getStringOrDefault(v, "logger.level", "info"),
		Format:     getStringOrDefault(v, "logger.format", "text"),
		Output:     getStringOrDefault(v, "logger.output", "stderr"),
		OutputFile: v.GetString("logger.output_file"),
	}
}
