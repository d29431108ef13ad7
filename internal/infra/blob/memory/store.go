// Package memory implements an in-memory asset blob store for tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"mapcore/internal/blob/core"
)

type entry struct {
	info core.Info
	data []byte
}

// Store keeps blobs in process memory.
type Store struct {
	mu   sync.RWMutex
	objs map[string]entry
}

// New returns an empty in-memory blob store.
func New() *Store { return &Store{objs: make(map[string]entry)} }

func (s *Store) Driver() core.Driver { return core.DriverMemory }

func (s *Store) Put(_ context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[key]; exists {
		return core.Info{}, fmt.Errorf("blob %s already exists", key)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Info{}, err
	}
	md := make(map[string]string, len(opts.Metadata))
	for k, v := range opts.Metadata {
		md[k] = v
	}
	info := core.Info{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  opts.ContentType,
		Metadata:     md,
		LastModified: time.Now().UTC(),
	}
	s.objs[key] = entry{info: info, data: data}
	return info, nil
}

func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.objs[key]
	if !ok {
		return core.Info{}, nil, fmt.Errorf("blob %s not found", key)
	}
	return e.info, io.NopCloser(bytes.NewReader(e.data)), nil
}

func (s *Store) Head(ctx context.Context, key string) (core.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.objs[key]
	if !ok {
		return core.Info{}, fmt.Errorf("blob %s not found", key)
	}
	return e.info, nil
}

func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objs[key]; !ok {
		return false, nil
	}
	delete(s.objs, key)
	return true, nil
}

func (s *Store) List(_ context.Context, prefix string) ([]core.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]core.Info, 0, len(s.objs))
	for key, e := range s.objs {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			infos = append(infos, e.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) PresignURL(context.Context, string, core.SignedURLOptions) (string, error) {
	return "", core.ErrUnsupported
}
