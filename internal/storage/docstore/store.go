// Package docstore keeps one JSON document per habit in a Badger database.
//
// Key layout:
//
//	habit/<id>                  habit document without completions
//	habit/<id>/day/<YYYY-MM-DD> empty marker, one per completed day
//	owner/<uid>/habit/<id>      empty marker indexing habits by owner
//	xptargets/<uid>             XP targets document
//	meta/schema                 format version written by Init
package docstore

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/julianstephens/habithero/internal/datekey"
	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/ledger"
	"github.com/julianstephens/habithero/internal/models"
)

const schemaVersion = "1"

var schemaKey = []byte("meta/schema")

func habitKey(id string) []byte {
	return []byte("habit/" + id)
}

func dayPrefix(id string) []byte {
	return []byte("habit/" + id + "/day/")
}

func dayKey(id string, day datekey.Key) []byte {
	return append(dayPrefix(id), day.String()...)
}

func ownerPrefix(owner string) []byte {
	return []byte("owner/" + owner + "/habit/")
}

func ownerKey(owner, id string) []byte {
	return append(ownerPrefix(owner), id...)
}

func targetsKey(owner string) []byte {
	return []byte("xptargets/" + owner)
}

// Options configures the database location. An empty Path or InMemory
// keeps everything in memory.
type Options struct {
	Path     string
	InMemory bool
}

// habitDoc is the stored form of a habit. Completions live under their own keys.
type habitDoc struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Icon      string    `json:"icon"`
	XPReward  int       `json:"xp_reward"`
	CreatedAt time.Time `json:"created_at"`
}

func docFor(h models.Habit) habitDoc {
	return habitDoc{ID: h.ID, OwnerID: h.OwnerID, Title: h.Title, Icon: h.Icon, XPReward: h.XPReward, CreatedAt: h.CreatedAt}
}

func (d habitDoc) habit(completions ledger.Ledger) models.Habit {
	return models.Habit{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Icon:        d.Icon,
		XPReward:    d.XPReward,
		Completions: completions,
		CreatedAt:   d.CreatedAt,
	}
}

type Store struct {
	opts Options
	db   *badger.DB
	now  func() time.Time
}

func New(opts Options) *Store {
	return &Store{opts: opts, now: time.Now}
}

func (s *Store) inMemory() bool {
	return s.opts.InMemory || s.opts.Path == ""
}

func (s *Store) open() error {
	var bopts badger.Options
	if s.inMemory() {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(s.opts.Path, 0700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		bopts = badger.DefaultOptions(s.opts.Path)
	}
	bopts = bopts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(bopts)
	if err != nil {
		return apperrors.Unavailable("open badger", err)
	}
	s.db = db
	return nil
}

// Init opens the database, creating it if needed, and records the format version.
func (s *Store) Init() error {
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(schemaKey, []byte(schemaVersion))
	})
	return apperrors.Unavailable("init", err)
}

// Load opens a database created by Init.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if !s.inMemory() {
		if _, err := os.Stat(s.opts.Path); os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'habithero init' first")
		}
	}
	if err := s.open(); err != nil {
		return err
	}

	var version string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(schemaKey)
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		version = string(v)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("storage not initialized, run 'habithero init' first")
	}
	if err != nil {
		return apperrors.Unavailable("load", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("document format version (%s) is not supported (want %s) - please upgrade habithero", version, schemaVersion)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) GetConfigPath() string {
	if s.inMemory() {
		return "badger (in-memory)"
	}
	return s.opts.Path
}

func (s *Store) ready(op string) error {
	if s.db == nil {
		return fmt.Errorf("%w: %s: store not loaded", apperrors.ErrStoreUnavailable, op)
	}
	return nil
}

// getDoc reads the document for id and enforces ownership.
func getDoc(txn *badger.Txn, owner, id string) (habitDoc, error) {
	item, err := txn.Get(habitKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return habitDoc{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return habitDoc{}, err
	}

	var d habitDoc
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &d)
	}); err != nil {
		return habitDoc{}, err
	}
	if d.OwnerID != owner {
		return habitDoc{}, fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, id)
	}
	return d, nil
}

func putDoc(txn *badger.Txn, d habitDoc) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return txn.Set(habitKey(d.ID), data)
}

// dayKeys lists the day markers stored for id.
func dayKeys(txn *badger.Txn, id string) ([][]byte, []string) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	prefix := dayPrefix(id)
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	var days []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		keys = append(keys, key)
		days = append(days, string(key[len(prefix):]))
	}
	return keys, days
}

// getHabit reads the document for id together with its completed days.
func getHabit(txn *badger.Txn, owner, id string) (models.Habit, error) {
	d, err := getDoc(txn, owner, id)
	if err != nil {
		return models.Habit{}, err
	}
	_, days := dayKeys(txn, id)
	completions, err := ledger.FromStrings(days)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, err)
	}
	return d.habit(completions), nil
}

// checkOwner confirms owner holds id through the owner index, falling back
// to the document to tell a missing habit from someone else's.
func checkOwner(txn *badger.Txn, owner, id string) error {
	_, err := txn.Get(ownerKey(owner, id))
	if err == nil {
		return nil
	}
	if !stderrors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	_, err = getDoc(txn, owner, id)
	return err
}

// markDay writes the marker for day unless it is already present. It reads
// only the owner index and the day key, so edits to the habit document do
// not conflict with it.
func markDay(txn *badger.Txn, owner, id string, day datekey.Key) (bool, error) {
	if err := checkOwner(txn, owner, id); err != nil {
		return false, err
	}
	key := dayKey(id, day)
	if _, err := txn.Get(key); err == nil {
		return false, nil
	} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
		return false, err
	}
	if err := txn.Set(key, nil); err != nil {
		return false, err
	}
	return true, nil
}

// wrap passes taxonomy errors through and reports everything else,
// transaction conflicts included, as ErrStoreUnavailable.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{apperrors.ErrNotFound, apperrors.ErrUnauthorized, apperrors.ErrInvalidDateKey} {
		if stderrors.Is(err, known) {
			return err
		}
	}
	return apperrors.Unavailable(op, err)
}

func (s *Store) CreateHabit(h models.Habit) (string, error) {
	if err := s.ready("create habit"); err != nil {
		return "", err
	}
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = s.now()
	}
	h.CreatedAt = h.CreatedAt.UTC().Truncate(time.Second)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(habitKey(h.ID)); err == nil {
			return fmt.Errorf("habit %s already exists", h.ID)
		} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := putDoc(txn, docFor(h)); err != nil {
			return err
		}
		for _, day := range h.Completions.SortedKeys() {
			if err := txn.Set(dayKey(h.ID, day), nil); err != nil {
				return err
			}
		}
		return txn.Set(ownerKey(h.OwnerID, h.ID), nil)
	})
	if err != nil {
		return "", wrap("create habit", err)
	}
	return h.ID, nil
}

func (s *Store) GetHabit(owner, id string) (models.Habit, error) {
	if err := s.ready("get habit"); err != nil {
		return models.Habit{}, err
	}
	var h models.Habit
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		h, err = getHabit(txn, owner, id)
		return err
	})
	return h, wrap("get habit", err)
}

// ListHabits walks the owner index and returns documents in creation order.
func (s *Store) ListHabits(owner string) ([]models.Habit, error) {
	if err := s.ready("list habits"); err != nil {
		return nil, err
	}

	var habits []models.Habit
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := ownerPrefix(owner)
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := string(it.Item().Key()[len(prefix):])
			h, err := getHabit(txn, owner, id)
			if err != nil {
				return err
			}
			habits = append(habits, h)
		}
		return nil
	})
	if err != nil {
		return nil, wrap("list habits", err)
	}

	sort.SliceStable(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID < habits[j].ID
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
	if habits == nil {
		habits = []models.Habit{}
	}
	return habits, nil
}

func (s *Store) UpdateHabit(owner, id string, patch models.HabitPatch) error {
	if err := s.ready("update habit"); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		d, err := getDoc(txn, owner, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			return nil
		}
		return putDoc(txn, docFor(patch.Apply(d.habit(ledger.Ledger{}))))
	})
	return wrap("update habit", err)
}

// MarkComplete writes the marker for day inside one serializable
// transaction. Two writers racing on the same day, or a completion racing a
// delete, fail with badger.ErrConflict, which is reported as ErrStoreUnavailable.
func (s *Store) MarkComplete(owner, id string, day datekey.Key) (bool, error) {
	if err := s.ready("mark complete"); err != nil {
		return false, err
	}
	added := false
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		added, err = markDay(txn, owner, id, day)
		return err
	})
	if err != nil {
		return false, wrap("mark complete", err)
	}
	return added, nil
}

func (s *Store) DeleteHabit(owner, id string) error {
	if err := s.ready("delete habit"); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := getDoc(txn, owner, id); err != nil {
			return err
		}
		keys, _ := dayKeys(txn, id)
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		if err := txn.Delete(habitKey(id)); err != nil {
			return err
		}
		return txn.Delete(ownerKey(owner, id))
	})
	return wrap("delete habit", err)
}

func (s *Store) GetXPTargets(owner string) (models.XPTargets, error) {
	if err := s.ready("get xp targets"); err != nil {
		return models.XPTargets{}, err
	}
	t := models.XPTargets{OwnerID: owner}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(targetsKey(owner))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
	})
	if err != nil {
		return models.XPTargets{}, wrap("get xp targets", err)
	}
	return t, nil
}

func (s *Store) SaveXPTargets(t models.XPTargets) error {
	if err := s.ready("save xp targets"); err != nil {
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(targetsKey(t.OwnerID), data)
	})
	return wrap("save xp targets", err)
}
