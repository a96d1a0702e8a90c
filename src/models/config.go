package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name" default:"stock-forecaster" validate:"required"`
	Host       string            `yaml:"host" default:"127.0.0.1" validate:"required"`
	Port       int               `yaml:"port" default:"8501" validate:"gt=1024,lte=65535"`
	LogLevel   string            `yaml:"log_level" default:"INFO" validate:"oneof=DEBUG INFO WARNING ERROR"`
	LogFormat  string            `yaml:"log_format" default:"console" validate:"oneof=console json"`
	GrpcHost   string            `yaml:"grpc_host" default:"127.0.0.1"`
	GrpcPort   int               `yaml:"grpc_port" validate:"gte=0,lte=65535"` // 0 disables the health service
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Cache      MCacheConfig      `yaml:"cache"`
	Forecast   MForecastConfig   `yaml:"forecast"`
	UI         MUIConfig         `yaml:"ui"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"` // proxies are only used when enabled
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout" default:"15" validate:"gt=0"`
	MaxRetries     int      `yaml:"retries" default:"2" validate:"gte=0,lte=10"`
	UserAgent      string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	StartDate string          `yaml:"start_date" default:"2010-01-01" validate:"datetime=2006-01-02"`
	Sources   []MSourceConfig `yaml:"sources" validate:"min=1,dive"`
}

// MSourceConfig describes one history provider. Order in the list is the
// fallback order: the first entry is the primary source.
type MSourceConfig struct {
	Name    string `yaml:"name" validate:"required,oneof=yahoo stooq eodhd"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	APIKey  string `yaml:"api_key"`
}

type MCacheConfig struct {
	Backend       string `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
	MaxEntries    int    `yaml:"max_entries" default:"256" validate:"gt=0"`
	TTLSeconds    int    `yaml:"ttl_seconds" validate:"gte=0"` // 0 keeps entries for the process lifetime
	PurgeCron     string `yaml:"purge_cron"`
	RedisHost     string `yaml:"redis_host" default:"localhost"`
	RedisPort     int    `yaml:"redis_port" default:"6379"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	Prefix        string `yaml:"prefix" default:"stock-forecaster"`
}

type MForecastConfig struct {
	DefaultYears          int     `yaml:"default_years" default:"2" validate:"gte=1"`
	MinYears              int     `yaml:"min_years" default:"1" validate:"gte=1"`
	MaxYears              int     `yaml:"max_years" default:"3" validate:"gtefield=MinYears"`
	Frequency             string  `yaml:"frequency" default:"calendar" validate:"oneof=calendar trading"`
	ChangepointCount      int     `yaml:"changepoints" default:"25" validate:"gte=0"`
	ChangepointRange      float64 `yaml:"changepoint_range" default:"0.8" validate:"gt=0,lte=1"`
	ChangepointPriorScale float64 `yaml:"changepoint_prior_scale" default:"0.05" validate:"gt=0"`
	SeasonalityPriorScale float64 `yaml:"seasonality_prior_scale" default:"10" validate:"gt=0"`
	YearlyOrder           int     `yaml:"yearly_order" default:"10" validate:"gte=0"`
	WeeklyOrder           int     `yaml:"weekly_order" default:"3" validate:"gte=0"`
	IntervalWidth         float64 `yaml:"interval_width" default:"0.8" validate:"gt=0,lt=1"`
}

type MUIConfig struct {
	Title         string        `yaml:"title" default:"Stock Prediction App"`
	RecentRows    int           `yaml:"recent_rows" default:"5" validate:"gt=0"`
	Instruments   []MInstrument `yaml:"instruments" validate:"dive"`
	AboutMarkdown string        `yaml:"about_markdown"`
}
