package config

// Config holds app configuration
type Config struct {
	// LumpExt is the extension picked up when a directory is passed to pack.
	// Empty means every file in the directory.
	LumpExt string `mapstructure:"lump_ext"`

	// Base is an existing archive to start from when packing
	Base string `mapstructure:"base"`
	// Output is where pack writes the archive
	Output string `mapstructure:"output"`
	// Remove lists lump names dropped from the base archive before adding
	Remove []string `mapstructure:"remove"`

	ExtractDir string `mapstructure:"extract_dir"`
	SortByName bool   `mapstructure:"sort"`

	DryRun       bool   `mapstructure:"dry_run"`
	LogLevel     string `mapstructure:"log_level"`
	LogOutputDir string `mapstructure:"log_output_dir"`
}
