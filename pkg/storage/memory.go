package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"paperflow-hq/paperflow/pkg/fieldschema"
	"paperflow-hq/paperflow/pkg/policy"
)

// MemoryStore implements Store using mutex-guarded maps. It is intended for
// tests and single-process development.
type MemoryStore struct {
	mu        sync.RWMutex
	policies  map[string]map[string]*policy.Policy    // userID -> policyID -> row
	versions  map[string][]*fieldschema.Version       // userID -> rows, insertion order
	documents map[string]map[string]documentLocation  // userID -> documentID -> location
}

type documentLocation struct {
	Path string
	Name string
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		policies:  make(map[string]map[string]*policy.Policy),
		versions:  make(map[string][]*fieldschema.Version),
		documents: make(map[string]map[string]documentLocation),
	}
}

// ListPolicies returns every policy row owned by userID.
func (s *MemoryStore) ListPolicies(ctx context.Context, userID string) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.policies[userID]
	results := make([]*policy.Policy, 0, len(rows))
	for _, p := range rows {
		// Copy to avoid mutation through the returned pointer.
		cp := *p
		results = append(results, &cp)
	}
	return results, nil
}

// UpsertPolicy inserts or replaces the row keyed by (userID, p.PolicyID).
func (s *MemoryStore) UpsertPolicy(ctx context.Context, userID string, p *policy.Policy) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policies[userID] == nil {
		s.policies[userID] = make(map[string]*policy.Policy)
	}
	cp := *p
	s.policies[userID][p.PolicyID] = &cp

	return userID + "/" + p.PolicyID, nil
}

// PatchPolicyMetadata applies a narrow metadata merge and reports rows matched.
func (s *MemoryStore) PatchPolicyMetadata(ctx context.Context, userID, policyID string, patch policy.MetadataPatch) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.policies[userID][policyID]
	if !ok {
		return 0, nil
	}
	patch.Apply(&row.Metadata)
	return 1, nil
}

// DeletePolicy removes the row keyed by (userID, policyID) and reports rows matched.
func (s *MemoryStore) DeletePolicy(ctx context.Context, userID, policyID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[userID][policyID]; !ok {
		return 0, nil
	}
	delete(s.policies[userID], policyID)
	return 1, nil
}

// ActiveSchemaVersion returns the owner's active version, or nil.
func (s *MemoryStore) ActiveSchemaVersion(ctx context.Context, userID string) (*fieldschema.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.versions[userID] {
		if v.IsActive {
			cp := cloneVersion(v)
			return cp, nil
		}
	}
	return nil, nil
}

// ListSchemaVersions returns all versions for the owner, newest first.
func (s *MemoryStore) ListSchemaVersions(ctx context.Context, userID string) ([]*fieldschema.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.versions[userID]
	results := make([]*fieldschema.Version, 0, len(rows))
	for _, v := range rows {
		results = append(results, cloneVersion(v))
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Version > results[j].Version
	})
	return results, nil
}

// InsertSchemaVersion appends version max+1 for the owner. The deactivation
// and insert happen under one mutex hold, so a concurrent reader never
// observes two active versions.
func (s *MemoryStore) InsertSchemaVersion(ctx context.Context, userID, versionContext string, fields []fieldschema.Field, activate bool) (*fieldschema.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxVersion := 0
	for _, v := range s.versions[userID] {
		if v.Version > maxVersion {
			maxVersion = v.Version
		}
	}

	if activate {
		for _, v := range s.versions[userID] {
			v.IsActive = false
		}
	}

	row := &fieldschema.Version{
		ID:        uuid.New().String(),
		UserID:    userID,
		Version:   maxVersion + 1,
		Context:   versionContext,
		Fields:    append([]fieldschema.Field(nil), fields...),
		IsActive:  activate,
		CreatedAt: time.Now().UTC(),
	}
	s.versions[userID] = append(s.versions[userID], row)

	return cloneVersion(row), nil
}

// ActivateSchemaVersion makes exactly versionID active for the owner.
func (s *MemoryStore) ActivateSchemaVersion(ctx context.Context, userID, versionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *fieldschema.Version
	for _, v := range s.versions[userID] {
		if v.ID == versionID {
			target = v
			break
		}
	}
	if target == nil {
		return false, nil
	}

	for _, v := range s.versions[userID] {
		v.IsActive = false
	}
	target.IsActive = true
	return true, nil
}

// UpdateDocumentLocation persists a document's current path and name.
func (s *MemoryStore) UpdateDocumentLocation(ctx context.Context, userID, documentID, path, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.documents[userID] == nil {
		s.documents[userID] = make(map[string]documentLocation)
	}
	s.documents[userID][documentID] = documentLocation{Path: path, Name: name}
	return nil
}

// DocumentLocation returns the stored location for a document. It exists for
// tests; the production read path lives upstream.
func (s *MemoryStore) DocumentLocation(userID, documentID string) (path, name string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.documents[userID][documentID]
	return loc.Path, loc.Name, ok
}

// Close releases nothing for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}

func cloneVersion(v *fieldschema.Version) *fieldschema.Version {
	cp := *v
	cp.Fields = append([]fieldschema.Field(nil), v.Fields...)
	return &cp
}
