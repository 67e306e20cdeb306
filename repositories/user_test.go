package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"gridlab/domain"
	"gridlab/errors"
)

func openUsers(t *testing.T) IUserRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db)
}

func TestUserRepository_Create_And_Get(t *testing.T) {
	req := require.New(t)
	repo := openUsers(t)

	id, err := repo.CreateUser("alice@example.com", "$argon2id$fake-hash", domain.Member)
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("$argon2id$fake-hash", user.PasswordHash)
	req.Equal(domain.Member, user.Authority)
}

func TestUserRepository_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	repo := openUsers(t)

	_, err := repo.CreateUser("alice@example.com", "hash1", domain.Member)
	req.NoError(err)

	_, err = repo.CreateUser("alice@example.com", "hash2", domain.Admin)
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_Unknown_Email(t *testing.T) {
	req := require.New(t)
	repo := openUsers(t)

	_, err := repo.GetUserByEmail("ghost@example.com")
	req.Error(err)
}
