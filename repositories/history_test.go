package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"gridlab/vcs"
)

func TestHistorySearch_Finds_Revisions_By_Comment_And_Author(t *testing.T) {
	req := require.New(t)
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	defer writer.Close()

	search := NewHistorySearch(writer, slog.Default())
	revisions := []vcs.RevisionInfo{
		{ID: uuid.New(), Revision: 2, Author: "alice", Comment: "edited orders table", At: time.Now()},
		{ID: uuid.New(), Revision: 3, Author: "bob", Comment: "removed stale customers", At: time.Now()},
		{ID: uuid.New(), Revision: 4, Author: "alice", Comment: "orders schema bump", At: time.Now()},
	}
	for _, rev := range revisions {
		req.NoError(search.Index(rev))
	}

	hits, total, err := search.Search(context.Background(), "orders", 10)
	req.NoError(err)
	req.Equal(uint64(2), total)
	req.Len(hits, 2)

	hits, total, err = search.Search(context.Background(), "bob", 10)
	req.NoError(err)
	req.Equal(uint64(1), total)
	req.Equal("removed stale customers", hits[0].Comment)
}
