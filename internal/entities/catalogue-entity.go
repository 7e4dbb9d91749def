package entities

// CatalogueKind - одна из справочных таблиц "только название".
type CatalogueKind string

const (
	CatalogueBranches         CatalogueKind = "branches"
	CatalogueMaintenanceTypes CatalogueKind = "maintenance_types"
	CatalogueEquipmentNames   CatalogueKind = "equipment_names"
	CatalogueFaultTypes       CatalogueKind = "fault_types"
	CatalogueSpareParts       CatalogueKind = "spare_parts"
)

// AllCatalogues в порядке, в котором они заполняются сидером.
var AllCatalogues = []CatalogueKind{
	CatalogueBranches,
	CatalogueMaintenanceTypes,
	CatalogueEquipmentNames,
	CatalogueFaultTypes,
	CatalogueSpareParts,
}

// Table - имя таблицы. Значение берётся только из констант выше.
func (k CatalogueKind) Table() string { return string(k) }

func (k CatalogueKind) Valid() bool {
	for _, c := range AllCatalogues {
		if c == k {
			return true
		}
	}
	return false
}

type CatalogueItem struct {
	ID   uint64 `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
