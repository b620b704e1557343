package component

// Name labels an entity for scenes and reports.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
