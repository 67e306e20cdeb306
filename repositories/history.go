//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=../mocks/mock_history_search.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"

	"gridlab/vcs"
)

type IHistorySearch interface {
	Index(info vcs.RevisionInfo) error
	Search(ctx context.Context, terms string, limit int) ([]HistoryHit, uint64, error)
}

// HistorySearch maintains a Bluge full-text index over commit history so
// operators can find revisions by author or comment without walking the
// whole log.
type HistorySearch struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewHistorySearch(writer *bluge.Writer, log *slog.Logger) *HistorySearch {
	return &HistorySearch{writer: writer, log: log}
}

type HistoryHit struct {
	RevisionID string
	Author     string
	Comment    string
}

func (h *HistorySearch) Index(info vcs.RevisionInfo) error {
	doc := bluge.NewDocument(info.ID.String())
	doc.AddField(bluge.NewTextField("comment", info.Comment).StoreValue())
	doc.AddField(bluge.NewKeywordField("author", info.Author).StoreValue())
	doc.AddField(bluge.NewKeywordField("revision", fmt.Sprintf("%d", info.Revision)).StoreValue())
	return h.writer.Update(doc.ID(), doc)
}

func (h *HistorySearch) Search(ctx context.Context, terms string, limit int) ([]HistoryHit, uint64, error) {
	reader, err := h.writer.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(terms).SetField("comment")).
		AddShould(bluge.NewTermQuery(terms).SetField("author")).
		SetMinShould(1)
	request := bluge.NewTopNSearch(limit, query).WithStandardAggregations()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var hits []HistoryHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit HistoryHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.RevisionID = string(value)
			case "author":
				hit.Author = string(value)
			case "comment":
				hit.Comment = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, 0, err
	}
	return hits, iterator.Aggregations().Count(), nil
}
