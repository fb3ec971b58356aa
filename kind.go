package comps

import (
	"github.com/df-mc/dragonfly/server/world"
)

// Category is a family of host kinds sharing one metafactory.
type Category uint8

const (
	// EntityCategory covers entity types, keyed by their saved entity id.
	EntityCategory Category = iota

	// BlockCategory covers blocks that carry block entity data.
	BlockCategory

	// ItemCategory covers item types; their hosts are item stacks.
	ItemCategory

	// categoryCount is the total number of categories.
	categoryCount
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case EntityCategory:
		return "entity"
	case BlockCategory:
		return "block"
	case ItemCategory:
		return "item"
	default:
		return "unknown"
	}
}

// Valid returns true for the defined categories.
func (c Category) Valid() bool {
	return c < categoryCount
}

// Wildcard is the kind id targeting every kind of a category.
const Wildcard = "*"

// Kind identifies one host object kind, such as a block type or item type.
// Kinds are comparable and used as blueprint cache keys.
type Kind struct {
	Category Category
	ID       string
}

// IsWildcard returns true if the kind targets every kind of its category.
func (k Kind) IsWildcard() bool {
	return k.ID == Wildcard
}

// String returns "category/id".
func (k Kind) String() string {
	return k.Category.String() + "/" + k.ID
}

// BlockKind returns the kind of a Dragonfly block, keyed by its block name.
func BlockKind(b world.Block) Kind {
	name, _ := b.EncodeBlock()
	return Kind{Category: BlockCategory, ID: name}
}

// ItemKind returns the kind of a Dragonfly item, keyed by its item name.
func ItemKind(it world.Item) Kind {
	name, _ := it.EncodeItem()
	return Kind{Category: ItemCategory, ID: name}
}

// EntityKind returns the kind of a Dragonfly entity type.
func EntityKind(t world.EntityType) Kind {
	return Kind{Category: EntityCategory, ID: t.EncodeEntity()}
}
