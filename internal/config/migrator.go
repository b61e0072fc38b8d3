package config

type MigratorConfig struct {
	MigrationsFolder string
	CommonConfig
}

// NewMigratorConfig defaults the migrations folder to the dialect-specific
// directory shipped with the image.
func NewMigratorConfig(dialect string) MigratorConfig {
	return MigratorConfig{
		MigrationsFolder: getEnv("MIGRATIONS_FOLDER", "migrations/"+folderName(dialect)),
		CommonConfig:     NewCommonConfig(),
	}
}

// folderName maps a database/sql dialect to its migrations directory; the
// sqlite3 driver name and the sqlite folder differ.
func folderName(dialect string) string {
	if dialect == "sqlite3" {
		return "sqlite"
	}
	return dialect
}
