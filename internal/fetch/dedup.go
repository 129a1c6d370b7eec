// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/paper-tracker/pkg/types"
)

// Dedup removes candidates already known to the store, then removes
// same-run DOI duplicates keeping the first occurrence in emission order,
// and finally truncates the survivors to max. Candidates without a DOI are
// exempt from the DOI pass; only their composite id deduplicates them.
func Dedup(ctx context.Context, reg Registry, candidates []types.Paper, max int, w io.Writer) ([]types.Paper, error) {
	seenDOI := make(map[string]bool)
	var kept []types.Paper

	known, doiDups := 0, 0
	for _, p := range candidates {
		exists, err := reg.Exists(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("checking paper %s: %w", p.ID, err)
		}
		if exists {
			known++
			continue
		}

		if p.DOI != "" {
			if seenDOI[p.DOI] {
				doiDups++
				continue
			}
			seenDOI[p.DOI] = true
		}

		kept = append(kept, p)
	}

	truncated := 0
	if max > 0 && len(kept) > max {
		truncated = len(kept) - max
		kept = kept[:max]
	}

	if known+doiDups+truncated > 0 {
		fmt.Fprintf(w, "dedup: dropped %d known, %d DOI duplicate(s), %d over per-run cap\n",
			known, doiDups, truncated)
	}
	return kept, nil
}
