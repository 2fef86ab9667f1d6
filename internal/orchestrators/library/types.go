package library

import (
	"github.com/dabidoe/character-foundry/internal/entities"
)

// ItemView is a library item with its display color
type ItemView struct {
	*entities.Item
	RarityColor string `json:"rarityColor"`
}

func newItemView(item *entities.Item) *ItemView {
	return &ItemView{Item: item, RarityColor: item.Rarity.Color()}
}

// ListItemsInput filters the library. Nil pointers do not filter.
type ListItemsInput struct {
	Category string
	Rarity   string
	Template *bool
	Public   *bool
	UserID   string
	Search   string
	Limit    int
	Skip     int
}

// ListItemsOutput is one page of items
type ListItemsOutput struct {
	Items []*ItemView `json:"items"`
	Total int         `json:"total"`
	Limit int         `json:"limit"`
	Skip  int         `json:"skip"`
}

// GetItemInput identifies a public item
type GetItemInput struct {
	GUID string
}

// GetItemOutput holds the item
type GetItemOutput struct {
	Item *ItemView
}

// ImportSRDInput limits the import to SRD equipment categories such as
// "martial-weapons". Empty imports everything.
type ImportSRDInput struct {
	Categories []string
}

// ImportSRDOutput reports what the import wrote
type ImportSRDOutput struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// SeedCatalogInput is empty
type SeedCatalogInput struct{}

// SeedCatalogOutput reports what seeding wrote
type SeedCatalogOutput struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
