package db

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrateStaticIPUniqueIndex makes staticipaddresses.ip unique among
// assigned addresses. DHCP and discovered rows may carry no ip at all.
func MigrateStaticIPUniqueIndex(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	dialect := db.Dialector.Name()

	switch dialect {
	case "mysql":
		// NULLs never collide in a MySQL unique index
		if db.Migrator().HasIndex("staticipaddresses", "ux_staticipaddresses_ip") {
			return nil
		}
		return db.Exec("CREATE UNIQUE INDEX `ux_staticipaddresses_ip` ON `staticipaddresses` (`ip`)").Error

	case "postgres":
		return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_staticipaddresses_ip ON "staticipaddresses" ("ip") WHERE "ip" IS NOT NULL`).Error

	case "sqlite":
		return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_staticipaddresses_ip ON staticipaddresses (ip) WHERE ip IS NOT NULL`).Error

	default:
		return fmt.Errorf("unsupported dialect: %s", dialect)
	}
}
