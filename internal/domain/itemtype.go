package domain

import (
	"sort"
	"strings"
)

// ItemType describes a dropdown-capable table and the capabilities the
// listing queries need to know about.
type ItemType struct {
	Name  string
	Table string
	// ParentField is the self-referencing foreign key of tree types.
	ParentField string
	// RightModule is the key checked in the session rights map.
	RightModule string

	Tree           bool
	EntityAssign   bool
	MayBeRecursive bool
	MayBeDeleted   bool
	MayBeTemplate  bool
	HasComment     bool
	ProductNumber  bool
	HasSerial      bool
	Connectable    bool
	Importable     bool

	// Columns lists the filterable columns beyond id, name and the
	// capability columns above.
	Columns []string
}

// ForeignKey returns the column name other tables use to reference this type.
func (t ItemType) ForeignKey() string {
	return strings.TrimPrefix(t.Table, "glpi_") + "_id"
}

// HasColumn reports whether col can be used in a filter against this type.
func (t ItemType) HasColumn(col string) bool {
	switch col {
	case "id", "name":
		return true
	case "comment":
		return t.HasComment
	case "entities_id":
		return t.EntityAssign || t.ParentField == col
	case "is_recursive":
		return t.MayBeRecursive
	case "is_deleted":
		return t.MayBeDeleted
	case "is_template":
		return t.MayBeTemplate
	case "product_number":
		return t.ProductNumber
	case "serial", "otherserial":
		return t.HasSerial
	case "completename", "level":
		return t.Tree
	}
	if t.Tree && col == t.ParentField {
		return true
	}
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

var itemTypes = map[string]ItemType{
	"Entity": {
		Name: "Entity", Table: "glpi_entities", ParentField: "entities_id", RightModule: "entity",
		Tree: true, HasComment: true,
	},
	"TaskCategory": {
		Name: "TaskCategory", Table: "glpi_taskcategories", ParentField: "taskcategories_id", RightModule: "taskcategory",
		Tree: true, EntityAssign: true, MayBeRecursive: true, HasComment: true, Importable: true,
		Columns: []string{"is_active"},
	},
	"Location": {
		Name: "Location", Table: "glpi_locations", ParentField: "locations_id", RightModule: "location",
		Tree: true, EntityAssign: true, MayBeRecursive: true, HasComment: true, Importable: true,
		Columns: []string{"building", "room"},
	},
	"Computer": {
		Name: "Computer", Table: "glpi_computers", RightModule: "computer",
		EntityAssign: true, MayBeRecursive: true, MayBeDeleted: true, MayBeTemplate: true, HasComment: true, HasSerial: true,
		Columns: []string{"locations_id", "computermodels_id", "users_id"},
	},
	"Printer": {
		Name: "Printer", Table: "glpi_printers", RightModule: "printer",
		EntityAssign: true, MayBeRecursive: true, MayBeDeleted: true, MayBeTemplate: true, HasComment: true,
		HasSerial: true, Connectable: true,
		Columns: []string{"locations_id", "is_global"},
	},
	"Monitor": {
		Name: "Monitor", Table: "glpi_monitors", RightModule: "monitor",
		EntityAssign: true, MayBeRecursive: true, MayBeDeleted: true, MayBeTemplate: true, HasComment: true,
		HasSerial: true, Connectable: true,
		Columns: []string{"locations_id", "is_global"},
	},
	"ComputerModel": {
		Name: "ComputerModel", Table: "glpi_computermodels", RightModule: "model",
		HasComment: true, ProductNumber: true, Importable: true,
	},
	"DocumentType": {
		Name: "DocumentType", Table: "glpi_documenttypes", RightModule: "typedoc",
		HasComment: true, Importable: true,
		Columns: []string{"ext", "mime"},
	},
	"UserTitle": {
		Name: "UserTitle", Table: "glpi_usertitles", RightModule: "dropdown",
		HasComment: true, Importable: true,
	},
	"BudgetType": {
		Name: "BudgetType", Table: "glpi_budgettypes", RightModule: "dropdown",
		HasComment: true, Importable: true,
	},
	"Netpoint": {
		Name: "Netpoint", Table: "glpi_netpoints", RightModule: "netpoint",
		EntityAssign: true, MayBeRecursive: true, HasComment: true, Importable: true,
		Columns: []string{"locations_id"},
	},
	"Contact": {
		Name: "Contact", Table: "glpi_contacts", RightModule: "contact_enterprise",
		EntityAssign: true, MayBeRecursive: true, MayBeDeleted: true, HasComment: true,
		Columns: []string{"firstname", "email"},
	},
	"Supplier": {
		Name: "Supplier", Table: "glpi_suppliers", RightModule: "contact_enterprise",
		EntityAssign: true, MayBeRecursive: true, MayBeDeleted: true, HasComment: true,
		Columns: []string{"email"},
	},
	"Budget": {
		Name: "Budget", Table: "glpi_budgets", RightModule: "budget",
		EntityAssign: true, MayBeRecursive: true, MayBeDeleted: true, MayBeTemplate: true, HasComment: true,
		Columns: []string{"locations_id", "budgettypes_id", "begin_date", "end_date"},
	},
}

// LookupItemType returns the registered type with the given name.
func LookupItemType(name string) (ItemType, bool) {
	t, ok := itemTypes[name]
	return t, ok
}

// LookupTable returns the registered type stored in the given table.
func LookupTable(table string) (ItemType, bool) {
	for _, t := range itemTypes {
		if t.Table == table {
			return t, true
		}
	}
	return ItemType{}, false
}

// LookupForeignKey resolves a foreign key column such as "locations_id"
// to the type it references.
func LookupForeignKey(col string) (ItemType, bool) {
	if !IsForeignKey(col) {
		return ItemType{}, false
	}
	return LookupTable("glpi_" + strings.TrimSuffix(col, "_id"))
}

// IsForeignKey reports whether col follows the "<table>_id" convention.
func IsForeignKey(col string) bool {
	return strings.HasSuffix(col, "_id") && len(col) > len("_id")
}

// ItemTypeNames returns the registered type names in alphabetical order.
func ItemTypeNames() []string {
	names := make([]string, 0, len(itemTypes))
	for n := range itemTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
