package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"gridlab/domain"
	"gridlab/vcs"
	"gridlab/vcs/badgervcs"
)

// inspect is the operator's offline lens: dump the session journal, walk a
// repository's revision log, or query the history index, without starting
// the server.
func main() {
	dbPath := flag.String("db", "", "Path to the session journal (badger)")
	repoPath := flag.String("repo", "", "Path to a repository base dir")
	blugePath := flag.String("bluge", "", "Path to the history index")
	search := flag.String("search", "", "Full-text query against the history index")
	limit := flag.Int("limit", 20, "Max entries to print")
	flag.Parse()

	switch {
	case *search != "" && *blugePath != "":
		if err := searchHistory(*blugePath, *search, *limit); err != nil {
			log.Fatal(err)
		}
	case *repoPath != "":
		if err := dumpRepository(*repoPath, *limit); err != nil {
			log.Fatal(err)
		}
	case *dbPath != "":
		if err := dumpJournal(*dbPath); err != nil {
			log.Fatal(err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// dumpJournal lists the interrupted sessions badger still holds, one line
// per session plus its op count.
func dumpJournal(path string) error {
	db, err := badger.Open(badger.DefaultOptions(path).WithReadOnly(true).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer db.Close()

	table := newTable([]string{"Domain", "Target", "Kind", "Owner", "Users", "Ops", "Created"})

	ops := make(map[string]int)
	var infos []domain.Info
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek([]byte("dom")); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			switch {
			case strings.HasPrefix(key, "domrow:"):
				// domrow:{id}:{seq}
				parts := strings.SplitN(key, ":", 3)
				if len(parts) == 3 {
					ops[parts[1]]++
				}
			case strings.HasPrefix(key, "dom:"):
				err := item.Value(func(val []byte) error {
					var info domain.Info
					if err := json.Unmarshal(val, &info); err != nil {
						fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
						return nil
					}
					infos = append(infos, info)
					return nil
				})
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, info := range infos {
		table.Append([]string{
			shortID(info.ID.String()),
			string(info.Target),
			string(info.Kind),
			info.Owner,
			fmt.Sprintf("%d", len(info.Users)),
			fmt.Sprintf("%d", ops[info.ID.String()]),
			info.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
	return nil
}

// dumpRepository prints backend info and the newest revisions.
func dumpRepository(basePath string, limit int) error {
	marker, err := vcs.ReadMarker(basePath)
	if err != nil {
		return err
	}
	if marker.Backend != badgervcs.Name {
		return fmt.Errorf("unsupported backend %q at %s", marker.Backend, basePath)
	}

	provider := badgervcs.NewProvider(slog.Default())
	info, err := provider.GetRepositoryInfo(basePath)
	if err != nil {
		return err
	}
	fmt.Printf("Backend: %s  Head: %d  Created: %s\n\n",
		info.Backend, info.Head, info.CreatedAt.Format("2006-01-02 15:04:05"))

	revisions, err := provider.GetLog(basePath, limit)
	if err != nil {
		return err
	}

	table := newTable([]string{"Rev", "Author", "Comment", "Paths", "Domain", "At"})
	for _, rev := range revisions {
		table.Append([]string{
			fmt.Sprintf("%d", rev.Revision),
			rev.Author,
			rev.Comment,
			fmt.Sprintf("%d", len(rev.Paths)),
			shortID(rev.Properties["domain"]),
			rev.At.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
	return nil
}

func searchHistory(path, query string, limit int) error {
	reader, err := bluge.OpenReader(bluge.DefaultConfig(path))
	if err != nil {
		return fmt.Errorf("opening history index: %w", err)
	}
	defer reader.Close()

	q := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(query).SetField("comment")).
		AddShould(bluge.NewTermQuery(query).SetField("author")).
		SetMinShould(1)

	it, err := reader.Search(context.Background(), bluge.NewTopNSearch(limit, q))
	if err != nil {
		return err
	}

	table := newTable([]string{"Revision ID", "Author", "Comment"})
	for {
		match, err := it.Next()
		if err != nil {
			return err
		}
		if match == nil {
			break
		}
		var id, author, comment string
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				id = string(value)
			case "author":
				author = string(value)
			case "comment":
				comment = string(value)
			}
			return true
		})
		if err != nil {
			return err
		}
		table.Append([]string{shortID(id), author, comment})
	}
	table.Render()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
