package config

// Config is the top-level civcards configuration, corresponding to
// .civcards.yml.
type Config struct {
	// Civ is the civilization served and inspected by default.
	Civ        string `yaml:"civ" koanf:"civ"`
	DataDir    string `yaml:"data_dir" koanf:"data_dir"`
	DatasetURL string `yaml:"dataset_url" koanf:"dataset_url"`
	StateDir   string `yaml:"state_dir" koanf:"state_dir"`
	Port       int    `yaml:"port" koanf:"port"`

	DefaultMajorGod string `yaml:"default_major_god" koanf:"default_major_god"`
	DefaultBuilding string `yaml:"default_building" koanf:"default_building"`

	GridColumns int `yaml:"grid_columns" koanf:"grid_columns"`
	// BuildingSlots overrides the building slot table. Empty strings are
	// open slots.
	BuildingSlots [][]string `yaml:"building_slots,omitempty" koanf:"building_slots"`
	Breakpoint    int        `yaml:"breakpoint" koanf:"breakpoint"`

	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	Metrics         bool `yaml:"metrics" koanf:"metrics"`
}
