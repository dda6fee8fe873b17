package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Census     CensusConfig     `yaml:"census" mapstructure:"census"`
	Boundaries BoundariesConfig `yaml:"boundaries" mapstructure:"boundaries"`
	Join       JoinConfig       `yaml:"join" mapstructure:"join"`
	Map        MapConfig        `yaml:"map" mapstructure:"map"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Runlog     RunlogConfig     `yaml:"runlog" mapstructure:"runlog"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// CensusConfig locates the census workbook and names its sheet.
type CensusConfig struct {
	WorkbookURL string `yaml:"workbook_url" mapstructure:"workbook_url"`
	Sheet       string `yaml:"sheet" mapstructure:"sheet"`
}

// BoundariesConfig locates the zipped boundary shapefile archive and
// describes how to read it.
type BoundariesConfig struct {
	ArchiveURL    string `yaml:"archive_url" mapstructure:"archive_url"`
	ShapefileName string `yaml:"shapefile_name" mapstructure:"shapefile_name"`
	NameField     string `yaml:"name_field" mapstructure:"name_field"`
	SourceProj4   string `yaml:"source_proj4" mapstructure:"source_proj4"`
}

// JoinConfig controls region-name reconciliation.
type JoinConfig struct {
	AliasFile      string `yaml:"alias_file" mapstructure:"alias_file"`
	AllowUnmatched bool   `yaml:"allow_unmatched" mapstructure:"allow_unmatched"`
}

// MapConfig controls the rendered artifact.
type MapConfig struct {
	Output        string `yaml:"output" mapstructure:"output"`
	Title         string `yaml:"title" mapstructure:"title"`
	DefaultMetric string `yaml:"default_metric" mapstructure:"default_metric"`
}

// FetchConfig configures the HTTP fetcher and temp storage.
type FetchConfig struct {
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// RunlogConfig configures the local run ledger.
type RunlogConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	Disabled bool   `yaml:"disabled" mapstructure:"disabled"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CENSUSMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. The two source URLs are the fixed pipeline inputs; everything
	// else is a knob with a sensible default so no config file is required.
	v.SetDefault("census.workbook_url", "https://www3.stats.govt.nz/Census/2013-census/data-tables/regional-summary-part-1.xlsx")
	v.SetDefault("census.sheet", "")
	v.SetDefault("boundaries.archive_url", "https://www3.stats.govt.nz/digitalboundaries/annual/ESRI_shapefile_Digital_Boundaries_2013_NZTM.zip")
	v.SetDefault("boundaries.shapefile_name", "REGC2013_GV_Clipped.shp")
	v.SetDefault("boundaries.name_field", "REGC2013_N")
	// NZTM2000 (EPSG:2193). Coordinates arrive projected in metres.
	v.SetDefault("boundaries.source_proj4", "+proj=tmerc +lat_0=0 +lon_0=173 +k=0.9996 +x_0=1600000 +y_0=10000000 +ellps=GRS80 +units=m +no_defs")
	v.SetDefault("join.allow_unmatched", false)
	v.SetDefault("map.output", "census-map.html")
	v.SetDefault("map.title", "Population density by region, 2006 and 2013")
	v.SetDefault("map.default_metric", "male_density_2013")
	v.SetDefault("fetch.user_agent", "censusmap/1.0")
	v.SetDefault("fetch.timeout_secs", 300)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("runlog.path", "censusmap-runs.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
