package routes

import "maintenance-system/internal/entities"

var (
	roleEngineer   = string(entities.RoleEngineer)
	roleTechnician = string(entities.RoleTechnician)
	roleStore      = string(entities.RoleStore)
	roleBranch     = string(entities.RoleBranch)
	roleAdmin      = string(entities.RoleAdmin)
)
