package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sicfor/sicfor/internal/models"
	"github.com/sicfor/sicfor/internal/repository"
)

// fakeSlotRepository keeps slot values in a map and can be told to fail
// writes, so the degrade-and-log paths are observable without a database.
type fakeSlotRepository struct {
	values     map[string]string
	failWrites bool
}

func newFakeSlotRepository() *fakeSlotRepository {
	return &fakeSlotRepository{values: map[string]string{}}
}

func (f *fakeSlotRepository) Read(key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", repository.ErrSlotNotFound
	}
	return value, nil
}

func (f *fakeSlotRepository) Write(key, value string) error {
	if f.failWrites {
		return errors.New("quota exceeded")
	}
	f.values[key] = value
	return nil
}

func (f *fakeSlotRepository) Delete(key string) error {
	delete(f.values, key)
	return nil
}

func makeRecord(n int) models.Certificate {
	return models.Certificate{
		ID:               fmt.Sprintf("id-%04d", n),
		VerificationCode: fmt.Sprintf("CODE%08d", n),
		Name:             fmt.Sprintf("Recipient %d", n),
		Title:            "Course Completion",
		Issuer:           "Centro X",
		Date:             "2024-03-01",
		Note:             "Completó el curso satisfactoriamente.",
		CreatedAt:        "2024-03-01T10:00:00Z",
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	t.Run("non-empty list round-trips deep-equal", func(t *testing.T) {
		s := NewCertificateStore(newFakeSlotRepository(), "")

		records := []models.Certificate{makeRecord(3), makeRecord(2), makeRecord(1)}
		s.Save(records)

		loaded := s.Load()
		assert.Equal(t, records, loaded)
	})

	t.Run("empty list round-trips", func(t *testing.T) {
		s := NewCertificateStore(newFakeSlotRepository(), "")
		s.Save([]models.Certificate{})
		assert.Empty(t, s.Load())
	})
}

func TestStore_AddInsertsAtHead(t *testing.T) {
	s := NewCertificateStore(newFakeSlotRepository(), "")

	first := makeRecord(1)
	second := makeRecord(2)
	s.Add(first)
	s.Add(second)

	loaded := s.Load()
	require.Len(t, loaded, 2)
	assert.Equal(t, second, loaded[0], "most recently added record must be at the head")
	assert.Equal(t, first, loaded[1])
}

func TestStore_Remove(t *testing.T) {
	t.Run("removes the matching record and keeps relative order", func(t *testing.T) {
		s := NewCertificateStore(newFakeSlotRepository(), "")
		for i := 1; i <= 3; i++ {
			s.Add(makeRecord(i))
		}

		s.Remove("id-0002")

		loaded := s.Load()
		require.Len(t, loaded, 2)
		assert.Equal(t, "id-0003", loaded[0].ID)
		assert.Equal(t, "id-0001", loaded[1].ID)
		assert.Nil(t, s.FindByID("id-0002"))
	})

	t.Run("unknown id is a no-op but still persists", func(t *testing.T) {
		repo := newFakeSlotRepository()
		s := NewCertificateStore(repo, "")
		s.Add(makeRecord(1))

		delete(repo.values, DefaultSlotKey)
		s.Remove("no-such-id")

		// The slot was rewritten even though nothing matched.
		_, ok := repo.values[DefaultSlotKey]
		assert.True(t, ok)
		assert.Len(t, s.Load(), 1)
	})
}

func TestStore_Clear(t *testing.T) {
	repo := newFakeSlotRepository()
	s := NewCertificateStore(repo, "")
	s.Add(makeRecord(1))
	s.Add(makeRecord(2))

	s.Clear()

	assert.Empty(t, s.Load())
	_, ok := repo.values[DefaultSlotKey]
	assert.False(t, ok, "clear must remove the slot entirely")
}

func TestStore_FindByCode(t *testing.T) {
	s := NewCertificateStore(newFakeSlotRepository(), "")
	record := makeRecord(7)
	s.Add(record)

	t.Run("exact code matches", func(t *testing.T) {
		found := s.FindByCode(record.VerificationCode)
		require.NotNil(t, found)
		assert.Equal(t, record.ID, found.ID)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		found := s.FindByCode("code00000007")
		require.NotNil(t, found)
		assert.Equal(t, record.ID, found.ID)
	})

	t.Run("miss returns nil", func(t *testing.T) {
		assert.Nil(t, s.FindByCode("ZZZZZZZZZZZZ"))
	})
}

func TestStore_MalformedSlotDegradesToEmpty(t *testing.T) {
	repo := newFakeSlotRepository()
	repo.values[DefaultSlotKey] = "{not json"

	s := NewCertificateStore(repo, "")
	assert.Empty(t, s.Load())
}

func TestStore_WriteFailureKeepsPriorState(t *testing.T) {
	repo := newFakeSlotRepository()
	s := NewCertificateStore(repo, "")
	s.Add(makeRecord(1))
	persisted := repo.values[DefaultSlotKey]

	repo.failWrites = true
	s.Add(makeRecord(2))

	// The failed write must not disturb what was already persisted, and the
	// failure must not surface to the caller.
	assert.Equal(t, persisted, repo.values[DefaultSlotKey])
}

func TestStore_ConcurrentAccess(t *testing.T) {
	// The store is served through gin, which handles requests on concurrent
	// goroutines, so mixed reads and writes must be safe and lose nothing.
	// Run with -race to catch unsynchronized access.
	s := NewCertificateStore(newFakeSlotRepository(), "")

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				n := w*perWriter + i
				s.Add(makeRecord(n))
				_ = s.FindByID(fmt.Sprintf("id-%04d", n))
				_ = s.FindByCode(fmt.Sprintf("CODE%08d", n))
				_ = s.Len()
			}
		}(w)
	}
	wg.Wait()

	loaded := s.Load()
	require.Len(t, loaded, writers*perWriter, "no added record may be lost under concurrency")
	for w := 0; w < writers; w++ {
		for i := 0; i < perWriter; i++ {
			id := fmt.Sprintf("id-%04d", w*perWriter+i)
			assert.NotNil(t, s.FindByID(id), "record %s missing after concurrent adds", id)
		}
	}
}

func TestStore_ReturnedRecordsAreCopies(t *testing.T) {
	s := NewCertificateStore(newFakeSlotRepository(), "")
	s.Add(makeRecord(1))

	found := s.FindByID("id-0001")
	require.NotNil(t, found)
	found.Name = "mutated"

	again := s.FindByID("id-0001")
	require.NotNil(t, again)
	assert.Equal(t, "Recipient 1", again.Name)
}
