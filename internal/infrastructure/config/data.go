package config

// DataConfig points at the CSV input directory and the report output
// directory
type DataConfig struct {
	DataDir   string `mapstructure:"data_dir" validate:"required"`
	OutputDir string `mapstructure:"output_dir" validate:"required"`
}
