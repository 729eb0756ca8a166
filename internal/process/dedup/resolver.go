package dedup

import "github.com/lueurxax/event-dedup/internal/core/domain"

// ChooseToKeep picks the survivor of two duplicates. Criteria, in order:
// known price, longer description, more recent ingestion time.
// A full tie returns x, so the function is deterministic but not commutative on ties.
func ChooseToKeep(x, y domain.EventRecord) domain.EventRecord {
	if xKnown, yKnown := x.HasKnownPrice(), y.HasKnownPrice(); xKnown != yKnown {
		if xKnown {
			return x
		}

		return y
	}

	if xLen, yLen := x.DescriptionLength(), y.DescriptionLength(); xLen != yLen {
		if xLen > yLen {
			return x
		}

		return y
	}

	if y.CreatedAtOrZero().After(x.CreatedAtOrZero()) {
		return y
	}

	return x
}

// Fold reduces a cluster to one survivor by pairwise ChooseToKeep in input order.
// The result depends on order when non-adjacent members tie exactly; callers must not
// reorder clusters to "fix" this, since that changes which listing survives.
func Fold(cluster []domain.EventRecord) (keep domain.EventRecord, remove []domain.EventRecord) {
	if len(cluster) == 0 {
		return domain.EventRecord{}, nil
	}

	keep = cluster[0]
	remove = make([]domain.EventRecord, 0, len(cluster)-1)

	for _, candidate := range cluster[1:] {
		winner := ChooseToKeep(keep, candidate)
		if winner.ID == keep.ID {
			remove = append(remove, candidate)
			continue
		}

		remove = append(remove, keep)
		keep = winner
	}

	return keep, remove
}
