package store

import (
	"time"

	"github.com/amishk599/resumegen/internal/model"
)

// NopStore is a no-op store used in dry-run mode. It never remembers a
// deployment, so every template renders on each run.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) LatestDigest(key, env string) (string, error)  { return "", nil }
func (s *NopStore) Record(d model.Deployment) error               { return nil }
func (s *NopStore) Recent(limit int) ([]model.Deployment, error)  { return nil, nil }
func (s *NopStore) Cleanup(olderThan time.Duration) error         { return nil }
