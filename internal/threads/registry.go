// Package threads builds the per-workspace thread list: paginated fetch,
// cwd filtering, ordering, and the join against persisted session metadata.
package threads

import (
	"context"
	"sort"
	"strings"

	"cockpit/internal/logging"
	"cockpit/internal/protocol"
	"cockpit/internal/sessionmeta"
	"cockpit/internal/types"
)

// Lister is the slice of the protocol client the registry needs.
type Lister interface {
	ListThreads(ctx context.Context, cursor *string) (*protocol.ThreadListResult, error)
}

type Registry struct {
	log  logging.Logger
	meta *sessionmeta.Store
}

func NewRegistry(log logging.Logger, meta *sessionmeta.Store) *Registry {
	return &Registry{
		log:  log.With(logging.F("component", "threads")),
		meta: meta,
	}
}

// List fetches every thread recorded for the workspace root and resolves
// display names through the session store in one batched merge.
func (r *Registry) List(ctx context.Context, client Lister, workspace types.Workspace) ([]types.Thread, error) {
	summaries, err := fetchAll(ctx, client)
	if err != nil {
		return nil, err
	}

	filtered := summaries[:0]
	for _, summary := range summaries {
		if summary.Cwd == workspace.Path {
			filtered = append(filtered, summary)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Created() > filtered[j].Created()
	})

	seen := make(map[string]struct{}, len(filtered))
	entries := make([]sessionmeta.ListingEntry, 0, len(filtered))
	for _, summary := range filtered {
		if _, dup := seen[summary.ID]; dup {
			continue
		}
		seen[summary.ID] = struct{}{}
		entries = append(entries, sessionmeta.ListingEntry{
			ThreadID: summary.ID,
			Preview:  strings.TrimSpace(summary.Preview),
		})
	}

	resolved, err := r.meta.MergeListing(workspace.Path, entries)
	if err != nil {
		// Metadata persistence failing must not hide the listing.
		r.log.Warn("listing merge failed", logging.F("workspace", workspace.ID), logging.F("error", err))
	}

	out := make([]types.Thread, 0, len(entries))
	for _, entry := range entries {
		meta := resolved[entry.ThreadID]
		out = append(out, types.Thread{
			ID:       entry.ThreadID,
			Name:     meta.Name,
			Archived: meta.Archived,
		})
	}
	r.log.Debug("threads listed",
		logging.F("workspace", workspace.ID),
		logging.F("fetched", len(summaries)),
		logging.F("kept", len(out)),
	)
	return out, nil
}

func fetchAll(ctx context.Context, client Lister) ([]protocol.ThreadSummary, error) {
	var out []protocol.ThreadSummary
	var cursor *string
	for {
		page, err := client.ListThreads(ctx, cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Data...)
		next := page.Cursor()
		if next == nil || strings.TrimSpace(*next) == "" {
			return out, nil
		}
		cursor = next
	}
}

// FlattenTurns collapses a snapshot's turns into one ordered item list for
// the bulk adapter path.
func FlattenTurns(thread *protocol.Thread) []map[string]any {
	if thread == nil {
		return nil
	}
	var out []map[string]any
	for _, turn := range thread.Turns {
		out = append(out, turn.Items...)
	}
	return out
}
