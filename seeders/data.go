package seeders

import "maintenance-system/internal/entities"

const defaultPassword = "pass123"

var catalogueData = map[entities.CatalogueKind][]string{
	entities.CatalogueBranches:         {"Main Branch", "Secondary Branch"},
	entities.CatalogueMaintenanceTypes: {"Preventive", "Corrective"},
	entities.CatalogueEquipmentNames:   {"Machine A", "Machine B"},
	entities.CatalogueFaultTypes:       {"Electrical", "Mechanical"},
	entities.CatalogueSpareParts:       {"Motor", "Gearbox"},
}

var techniciansData = []struct {
	Name   string
	Phone  string
	Branch string
}{
	{Name: "Technician 1", Phone: "123456789", Branch: "Main Branch"},
	{Name: "Technician 2", Phone: "987654321", Branch: "Secondary Branch"},
}

var usersData = []struct {
	Username        string
	Role            entities.Role
	TechnicianPhone string
}{
	{Username: "engineer", Role: entities.RoleEngineer},
	{Username: "technician", Role: entities.RoleTechnician, TechnicianPhone: "123456789"},
	{Username: "store", Role: entities.RoleStore},
	{Username: "branch", Role: entities.RoleBranch},
	{Username: "admin", Role: entities.RoleAdmin},
}
