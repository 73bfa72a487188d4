package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"

	"github.com/dreyloch/ashfell/internal/game"
	"github.com/dreyloch/ashfell/internal/storage"
)

type StorageConfig struct {
	Npcs   AssetConfig[*game.NpcSpec]   `json:"npcs"`
	Items  AssetConfig[*game.ItemSpec]  `json:"items"`
	Spells AssetConfig[*game.SpellSpec] `json:"spells"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Npcs.Validate("npcs"))
	el.Add(c.Items.Validate("items"))
	el.Add(c.Spells.Validate("spells"))
	return el.Err()
}

// ContentStores holds the loaded asset stores with cross-references resolved.
type ContentStores struct {
	Npcs   storage.Storer[*game.NpcSpec]
	Items  storage.Storer[*game.ItemSpec]
	Spells storage.Storer[*game.SpellSpec]
}

func (c *StorageConfig) BuildStores() (*ContentStores, error) {
	npcs, err := storage.NewFileStore[*game.NpcSpec](c.Npcs.Path)
	if err != nil {
		return nil, fmt.Errorf("creating npc store: %w", err)
	}
	items, err := storage.NewFileStore[*game.ItemSpec](c.Items.Path)
	if err != nil {
		return nil, fmt.Errorf("creating item store: %w", err)
	}
	spells, err := storage.NewFileStore[*game.SpellSpec](c.Spells.Path)
	if err != nil {
		return nil, fmt.Errorf("creating spell store: %w", err)
	}

	// Loot entries reference items by id; resolve them now so a bad
	// reference fails startup instead of a kill.
	el := errors.NewErrorList()
	for id, spec := range npcs.GetAll() {
		for i := range spec.Loot {
			if err := spec.Loot[i].Item.Resolve(items); err != nil {
				el.Add(fmt.Errorf("npc %q loot %d: %w", id, i, err))
			}
		}
	}
	if err := el.Err(); err != nil {
		return nil, fmt.Errorf("resolving references: %w", err)
	}

	return &ContentStores{
		Npcs:   npcs,
		Items:  items,
		Spells: spells,
	}, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	if _, err := os.Stat(c.Path); err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}
