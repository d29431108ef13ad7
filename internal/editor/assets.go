package editor

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"mapcore/internal/blob"
	"mapcore/pkg/domain"
)

// UploadAsset streams asset bytes into the blob backend and records the asset
// in the canonical store. The blob key is derived from the asset id; callers
// may supply an id for lossless re-import, otherwise one is generated.
func (s *Service) UploadAsset(ctx context.Context, asset domain.Asset, r io.Reader) (domain.Asset, error) {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	if s.blobs == nil {
		return domain.Asset{}, fmt.Errorf("no blob store configured")
	}
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	asset.BlobKey = blob.AssetKey(asset.ID)
	var stored domain.Asset
	err := s.observe(ctx, "upload_asset", "", func(ctx context.Context) error {
		if _, err := s.blobs.Put(ctx, asset.BlobKey, r, blob.PutOptions{ContentType: asset.ContentType}); err != nil {
			return err
		}
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			stored, txErr = tx.PutAsset(asset)
			return txErr
		})
		if err != nil {
			// keep bytes and record paired: drop the orphaned blob
			if _, delErr := s.blobs.Delete(ctx, asset.BlobKey); delErr != nil {
				s.log.Warn("orphaned asset blob left behind", "key", asset.BlobKey, "error", delErr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Asset{}, err
	}
	return stored, nil
}

// OpenAsset returns the asset record and a reader over its stored bytes. The
// caller closes the reader.
func (s *Service) OpenAsset(ctx context.Context, id string) (domain.Asset, io.ReadCloser, error) {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	if s.blobs == nil {
		return domain.Asset{}, nil, fmt.Errorf("no blob store configured")
	}
	asset, ok := s.findAssetLocked(id)
	if !ok {
		return domain.Asset{}, nil, domain.ErrNotFound{Entity: domain.EntityAsset, ID: id}
	}
	_, rc, err := s.blobs.Get(ctx, asset.BlobKey)
	if err != nil {
		return domain.Asset{}, nil, err
	}
	return asset, rc, nil
}

// DeleteAsset removes the asset record and its stored bytes. A background
// reference to the asset is cleared by the store.
func (s *Service) DeleteAsset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	return s.observe(ctx, "delete_asset", "", func(ctx context.Context) error {
		asset, ok := s.findAssetLocked(id)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityAsset, ID: id}
		}
		if _, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.RemoveAsset(id)
		}); err != nil {
			return err
		}
		if s.blobs != nil && asset.BlobKey != "" {
			if _, err := s.blobs.Delete(ctx, asset.BlobKey); err != nil {
				s.log.Warn("asset blob not removed", "key", asset.BlobKey, "error", err)
			}
		}
		return nil
	})
}

// SetBackgroundAsset points the document background at an uploaded asset; an
// empty id clears it.
func (s *Service) SetBackgroundAsset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if id == "" {
			return tx.SetBackgroundImage(nil)
		}
		return tx.SetBackgroundImage(&id)
	})
	return err
}

// Assets returns the recorded assets in deterministic order.
func (s *Service) Assets() []domain.Asset {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	return s.store.ListAssets()
}

func (s *Service) findAssetLocked(id string) (domain.Asset, bool) {
	for _, asset := range s.store.ListAssets() {
		if asset.ID == id {
			return asset, true
		}
	}
	return domain.Asset{}, false
}
