package provider

import (
	"context"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

// AddIndex stores idx and returns its new id. A duplicate name is
// ErrAlreadyExists.
func (p *Provider) AddIndex(ctx context.Context, idx *catalog.Index) (catalog.ObjectID, error) {
	if idx.Name == "" {
		return catalog.InvalidObjectID, catalog.Errorf(catalog.ErrInvalidParameter, "index name is required")
	}

	indexID := catalog.InvalidObjectID
	err := p.transact(ctx, "add index", func(ctx context.Context) error {
		id, err := p.store.Indexes().Insert(ctx, idx)
		if err != nil {
			return err
		}
		indexID = id
		return nil
	})
	if err != nil {
		if existing, selectErr := p.store.Indexes().Select(ctx, catalog.KeyName, idx.Name); selectErr == nil && existing.ID != catalog.InvalidObjectID {
			return catalog.InvalidObjectID, catalog.Errorf(catalog.ErrAlreadyExists, "index %q", idx.Name)
		}
		return catalog.InvalidObjectID, err
	}
	return indexID, nil
}

// GetIndex returns the index whose key field equals value.
func (p *Provider) GetIndex(ctx context.Context, key catalog.Key, value string) (*catalog.Index, error) {
	return p.store.Indexes().Select(ctx, key, value)
}

// GetIndexes returns every index.
func (p *Provider) GetIndexes(ctx context.Context) ([]*catalog.Index, error) {
	return p.store.Indexes().SelectAll(ctx)
}

// UpdateIndex replaces the index with the given id. Its id, format
// version and generation are kept.
func (p *Provider) UpdateIndex(ctx context.Context, id catalog.ObjectID, idx *catalog.Index) error {
	if idx.Name == "" {
		return catalog.Errorf(catalog.ErrInvalidParameter, "index name is required")
	}
	return p.transact(ctx, "update index", func(ctx context.Context) error {
		return p.store.Indexes().Update(ctx, id, idx)
	})
}

// RemoveIndex deletes the index whose key field equals value and returns its id.
func (p *Provider) RemoveIndex(ctx context.Context, key catalog.Key, value string) (catalog.ObjectID, error) {
	indexID := catalog.InvalidObjectID
	err := p.transact(ctx, "remove index", func(ctx context.Context) error {
		id, err := p.store.Indexes().Delete(ctx, key, value)
		if err != nil {
			return err
		}
		indexID = id
		return nil
	})
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	return indexID, nil
}

// GetDataType returns the data type whose key field equals value.
func (p *Provider) GetDataType(ctx context.Context, key catalog.Key, value string) (*catalog.DataType, error) {
	return p.store.DataTypes().Select(ctx, key, value)
}

// GetDataTypes returns every data type.
func (p *Provider) GetDataTypes(ctx context.Context) ([]*catalog.DataType, error) {
	return p.store.DataTypes().SelectAll(ctx)
}
