package dto

const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 100

	DefaultModelType = "gpt-4o"

	RoleDeveloper = "developer"
	RoleUser      = "user"
)
