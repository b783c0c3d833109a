package config

// Config is the effective memscope configuration.
type Config struct {
	Output    Output    `koanf:"output" toml:"output"`
	Resolver  Resolver  `koanf:"resolver" toml:"resolver"`
	Traversal Traversal `koanf:"traversal" toml:"traversal"`
	Dump      Dump      `koanf:"dump" toml:"dump"`
	Memmap    Memmap    `koanf:"memmap" toml:"memmap"`
	Styles    Styles    `koanf:"styles" toml:"styles"`
}

// Output selects backends and the unavailable marker.
type Output struct {
	Formats     []string `koanf:"formats" toml:"formats"`
	File        string   `koanf:"file" toml:"file"`
	Unavailable string   `koanf:"unavailable" toml:"unavailable"`
}

type Resolver struct {
	MaxDistance uint64 `koanf:"max_distance" toml:"max_distance"`
}

type Traversal struct {
	MaxNodes int `koanf:"max_nodes" toml:"max_nodes"`
}

type Dump struct {
	Dir string `koanf:"dir" toml:"dir"`
}

type Memmap struct {
	Coalesce bool `koanf:"coalesce" toml:"coalesce"`
}

type Styles struct {
	Path string `koanf:"path" toml:"path"`
}
