//go:generate go run go.uber.org/mock/mockgen -source=domain.go -destination=../mocks/mock_domain_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"gridlab/domain"
	"gridlab/domains"
)

type IDomainRepository interface {
	SaveInfo(info domain.Info) error
	AppendRow(id domain.ID, op domain.RowOp) error
	Load(id domain.ID) (domains.PersistedDomain, error)
	LoadAll() ([]domains.PersistedDomain, error)
	Purge(id domain.ID) error
}

// DomainRepository journals open sessions in BadgerDB so a restart can
// re-hydrate them. Keys:
//
//	dom:{id}                   -> Info JSON
//	domrow:{id}:{seq_padded}   -> RowOp JSON
//
// The 19-digit zero padding keeps row ops in append order under a
// lexicographic prefix scan, and the sequence counter disconnects two ops
// journaled in the same nanosecond.
type DomainRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewDomainRepository(db *badger.DB, log *slog.Logger) *DomainRepository {
	return &DomainRepository{db: db, log: log}
}

func infoKey(id domain.ID) []byte {
	return []byte("dom:" + id.String())
}

func rowPrefix(id domain.ID) []byte {
	return []byte("domrow:" + id.String() + ":")
}

func (r *DomainRepository) SaveInfo(info domain.Info) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(infoKey(info.ID), data)
	})
}

func (r *DomainRepository) AppendRow(id domain.ID, op domain.RowOp) error {
	data, err := json.Marshal(op)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		seq, err := r.nextSeq(txn, id)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s%019d", rowPrefix(id), seq)
		return txn.Set([]byte(key), data)
	})
}

// nextSeq finds the next append position by seeking the last existing row
// key in reverse. Runs inside the update transaction, so appends never race.
func (r *DomainRepository) nextSeq(txn *badger.Txn, id domain.ID) (int64, error) {
	options := badger.DefaultIteratorOptions
	options.Reverse = true
	it := txn.NewIterator(options)
	defer it.Close()

	prefix := rowPrefix(id)
	seek := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
	it.Seek(seek)
	if !it.ValidForPrefix(prefix) {
		return 1, nil
	}
	key := string(it.Item().Key())
	last, err := strconv.ParseInt(key[len(prefix):], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt row key %q: %w", key, err)
	}
	return last + 1, nil
}

func (r *DomainRepository) Load(id domain.ID) (domains.PersistedDomain, error) {
	var p domains.PersistedDomain
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(infoKey(id))
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p.Info)
		}); err != nil {
			return err
		}
		p.Ops, err = readOps(txn, id)
		return err
	})
	return p, err
}

func (r *DomainRepository) LoadAll() ([]domains.PersistedDomain, error) {
	var all []domains.PersistedDomain
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("dom:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var info domain.Info
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &info)
			}); err != nil {
				// One corrupt entry must not abort the whole restore.
				r.log.Warn("Skipping corrupt domain journal entry", "key", string(it.Item().Key()), "err", err)
				continue
			}
			ops, err := readOps(txn, info.ID)
			if err != nil {
				return err
			}
			all = append(all, domains.PersistedDomain{Info: info, Ops: ops})
		}
		return nil
	})
	return all, err
}

func readOps(txn *badger.Txn, id domain.ID) ([]domain.RowOp, error) {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var ops []domain.RowOp
	prefix := rowPrefix(id)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var op domain.RowOp
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &op)
		}); err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Purge removes a session's journal once its terminal transition completed.
func (r *DomainRepository) Purge(id domain.ID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(infoKey(id)); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		prefix := rowPrefix(id)
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// IsNotFound translates badger's sentinel for callers outside this package.
func IsNotFound(err error) bool {
	return err == badger.ErrKeyNotFound || (err != nil && strings.Contains(err.Error(), badger.ErrKeyNotFound.Error()))
}
