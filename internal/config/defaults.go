package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults installs the built-in defaults, the lowest layer of the
// precedence stack.
func setDefaults(v *viper.Viper) {
	v.SetDefault("global.clean", false)
	v.SetDefault("global.fetch", true)
	v.SetDefault("global.build", true)
	v.SetDefault("global.redownload", false)
	v.SetDefault("global.reextract", false)
	v.SetDefault("global.reconfigure", false)
	v.SetDefault("global.rebuild", false)
	v.SetDefault("global.parallelism", 0)

	v.SetDefault("tools.git", "git")
	v.SetDefault("tools.timeout", time.Duration(0))
	v.SetDefault("tools.grace_period", 5*time.Second)
	v.SetDefault("tools.shallow", true)
	v.SetDefault("tools.no_pull", false)

	v.SetDefault("paths.build", "build")
	v.SetDefault("paths.patches", "patches")
	v.SetDefault("paths.prefix", "install")

	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}
