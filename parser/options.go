package parser

const (
	DefaultSectorSize = 512
	DefaultChunkSize  = 4096
	DefaultPageSize   = 1024
	DefaultCacheSize  = 10000
)

// Config controls volume geometry and I/O sizing. Geometry fields left
// at zero are taken from the NTFS boot sector; a non-zero value
// overrides what the boot sector says.
type Config struct {
	// Sector size used for partition table LBA arithmetic.
	SectorSize int64 `mapstructure:"sector_size"`

	ClusterSize int64 `mapstructure:"cluster_size"`
	RecordSize  int64 `mapstructure:"record_size"`

	// Size of each read issued while reconstructing file content.
	ChunkSize int64 `mapstructure:"chunk_size"`

	// Page size and number of pages cached by the PagedReader.
	PageSize  int64 `mapstructure:"page_size"`
	CacheSize int   `mapstructure:"cache_size"`
}

func GetDefaultConfig() Config {
	return Config{
		SectorSize: DefaultSectorSize,
		ChunkSize:  DefaultChunkSize,
		PageSize:   DefaultPageSize,
		CacheSize:  DefaultCacheSize,
	}
}

// Fill in anything left unset with the defaults.
func (self Config) normalize() Config {
	defaults := GetDefaultConfig()
	if self.SectorSize <= 0 {
		self.SectorSize = defaults.SectorSize
	}
	if self.ChunkSize <= 0 {
		self.ChunkSize = defaults.ChunkSize
	}
	if self.PageSize <= 0 {
		self.PageSize = defaults.PageSize
	}
	if self.CacheSize <= 0 {
		self.CacheSize = defaults.CacheSize
	}
	return self
}
