package models

import "gorm.io/gorm"

// Migrate creates or updates every relational table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Profile{},
		&ProfileFriend{},
		&Relationship{},
		&Post{},
		&PostLike{},
		&Comment{},
		&Like{},
		&Notification{},
	)
}
