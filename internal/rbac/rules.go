package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
	},
	"instructor": {
		"exam:view",
		"exam:create",
		"exam:update",
		"exam:publish",
		"course:create",
		"course:view",
		"authoring:*",
	},
	"admin": {
		"*", // everything
	},
}
