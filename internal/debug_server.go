package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"

	"gridlab/domain"
	"gridlab/domains"
	"gridlab/observability"
)

// DebugServer exposes read-only introspection over HTTP: active sessions,
// engine telemetry, and a raw prefix scan of the journal store. Operator
// tooling only, never part of the client surface.
type DebugServer struct {
	log        *slog.Logger
	db         *badger.DB
	domains    *domains.DomainContext
	monitoring *observability.MonitoringManager
	srv        *http.Server
}

func NewDebugServer(
	log *slog.Logger,
	db *badger.DB,
	domainCtx *domains.DomainContext,
	monitoring *observability.MonitoringManager,
	port int,
) *DebugServer {
	s := &DebugServer{log: log, db: db, domains: domainCtx, monitoring: monitoring}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/domains", s.handleDomains)
	mux.HandleFunc("/debug/monitoring", s.handleMonitoring)
	mux.HandleFunc("/debug/journal", s.handleJournal)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *DebugServer) Start() {
	go func() {
		s.log.Info("Debug server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("Debug server failed", "err", err)
		}
	}()
}

func (s *DebugServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *DebugServer) handleDomains(w http.ResponseWriter, r *http.Request) {
	type sessionView struct {
		Info  domain.Info  `json:"info"`
		Users []domain.User `json:"users"`
		Rows  int          `json:"rows"`
	}
	var out []sessionView
	for _, d := range s.domains.Domains() {
		info, err := d.Info(r.Context())
		if err != nil {
			continue
		}
		users, _ := d.Users(r.Context())
		rows, _ := d.Rows(r.Context())
		out = append(out, sessionView{Info: info, Users: users, Rows: len(rows)})
	}
	writeJSON(w, out)
}

func (s *DebugServer) handleMonitoring(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.monitoring.GetLatest())
}

// handleJournal dumps raw journal entries under a key prefix, defaulting to
// the session metadata keys.
func (s *DebugServer) handleJournal(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = "dom:"
	}

	type entry struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	var entries []entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				entries = append(entries, entry{Key: string(item.Key()), Value: append([]byte(nil), val...)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
