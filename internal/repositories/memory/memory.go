// Package memory provides mutex-guarded in-memory implementations of the
// entries, masterkeys and accesslog repositories. It backs the vault and
// server tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/google/uuid"
)

// Store holds every table. Fail* hooks, when set, are returned instead of
// performing the corresponding write.
type Store struct {
	mu        sync.Mutex
	entries   map[string]*models.CredentialEntry
	masterKey map[string]*models.MasterKeyRecord
	log       []*models.AccessLogEntry
	nextLogID int64
	writes    int

	FailAppend error
	FailUpdate error
}

func NewStore() *Store {
	return &Store{
		entries:   make(map[string]*models.CredentialEntry),
		masterKey: make(map[string]*models.MasterKeyRecord),
	}
}

// Writes counts successful mutations of entries and master keys. Access log
// appends are not counted.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Store) Entries() *EntryRepository        { return &EntryRepository{s} }
func (s *Store) MasterKeys() *MasterKeyRepository { return &MasterKeyRepository{s} }
func (s *Store) AccessLog() *AccessLogRepository  { return &AccessLogRepository{s} }

func cloneEntry(e *models.CredentialEntry) *models.CredentialEntry {
	c := *e
	c.Ciphertext = common.CloneBytes(e.Ciphertext)
	c.Nonce = common.CloneBytes(e.Nonce)
	c.LegacyUsername = common.CloneBytes(e.LegacyUsername)
	c.LegacyNotes = common.CloneBytes(e.LegacyNotes)
	if e.URL != nil {
		c.URL = models.StringPtr(*e.URL)
	}
	if e.PropertyID != nil {
		c.PropertyID = models.StringPtr(*e.PropertyID)
	}
	if e.RotatedAt != nil {
		t := *e.RotatedAt
		c.RotatedAt = &t
	}
	return &c
}

type EntryRepository struct{ s *Store }

func (r *EntryRepository) Insert(ctx context.Context, entry *models.CredentialEntry) (*models.CredentialEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if _, ok := r.s.entries[entry.ID]; ok {
		return nil, errors.New("duplicate entry id")
	}
	r.s.entries[entry.ID] = cloneEntry(entry)
	r.s.writes++
	return entry, nil
}

func (r *EntryRepository) GetByID(ctx context.Context, id string) (*models.CredentialEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneEntry(e), nil
}

func (r *EntryRepository) List(ctx context.Context) ([]*models.CredentialEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.CredentialEntry, 0, len(r.s.entries))
	for _, e := range r.s.entries {
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *EntryRepository) Update(ctx context.Context, entry *models.CredentialEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailUpdate != nil {
		return r.s.FailUpdate
	}
	cur, ok := r.s.entries[entry.ID]
	if !ok {
		return common.ErrorNotFound
	}
	next := cloneEntry(entry)
	next.CreatedAt = cur.CreatedAt
	next.CreatedBy = cur.CreatedBy
	r.s.entries[entry.ID] = next
	r.s.writes++
	return nil
}

func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entries[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.entries, id)
	r.s.writes++
	return nil
}

type MasterKeyRepository struct{ s *Store }

func cloneRecord(rec *models.MasterKeyRecord) *models.MasterKeyRecord {
	c := *rec
	c.Verifier = common.CloneBytes(rec.Verifier)
	c.Salt = common.CloneBytes(rec.Salt)
	return &c
}

func (r *MasterKeyRepository) Get(ctx context.Context, principalID string) (*models.MasterKeyRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.masterKey[principalID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneRecord(rec), nil
}

func (r *MasterKeyRepository) Upsert(ctx context.Context, rec *models.MasterKeyRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	next := cloneRecord(rec)
	if cur, ok := r.s.masterKey[rec.PrincipalID]; ok {
		next.CreatedAt = cur.CreatedAt
	}
	r.s.masterKey[rec.PrincipalID] = next
	r.s.writes++
	return nil
}

func (r *MasterKeyRepository) InsertIfAbsent(ctx context.Context, rec *models.MasterKeyRecord) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.masterKey[rec.PrincipalID]; ok {
		return false, nil
	}
	r.s.masterKey[rec.PrincipalID] = cloneRecord(rec)
	r.s.writes++
	return true, nil
}

type AccessLogRepository struct{ s *Store }

func (r *AccessLogRepository) Append(ctx context.Context, e *models.AccessLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailAppend != nil {
		return r.s.FailAppend
	}
	r.s.nextLogID++
	e.ID = r.s.nextLogID
	c := *e
	r.s.log = append(r.s.log, &c)
	return nil
}

func (r *AccessLogRepository) List(ctx context.Context, entryID string) ([]*models.AccessLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.AccessLogEntry
	for i := len(r.s.log) - 1; i >= 0; i-- {
		e := r.s.log[i]
		if entryID != "" && e.EntryID != entryID {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *AccessLogRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.AccessLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.AccessLogEntry
	for _, e := range r.s.log {
		if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
