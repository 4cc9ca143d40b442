package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
)

// unionFind is a disjoint-set over row indices, keeping duplicate clustering
// near-linear for large imports.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// DetectDuplicates clusters rows that represent the same application. Two
// records are duplicates when their normalized (company, position) pairs are
// equal; clustering is transitive. Rows missing either field never cluster.
// Groups matching an existing stored record suggest skip; purely in-batch
// groups suggest import_as_new. Output is deterministic for identical input.
func DetectDuplicates(rows []models.RawRow, mapping models.ColumnMapping, existing []*models.Application) []models.DuplicateGroup {
	uf := newUnionFind(len(rows))
	firstByKey := make(map[string]int, len(rows))
	keyByRow := make([]string, len(rows))

	for i, row := range rows {
		company := row.TrimmedValue(mapping, models.FieldCompany)
		position := row.TrimmedValue(mapping, models.FieldPosition)
		if company == "" || position == "" {
			continue
		}
		key := models.DuplicateKey(company, position)
		keyByRow[i] = key
		if first, ok := firstByKey[key]; ok {
			uf.union(first, i)
		} else {
			firstByKey[key] = i
		}
	}

	// Existing records indexed by key; the first exact match wins.
	existingByKey := make(map[string]*models.Application, len(existing))
	for _, app := range existing {
		key := app.DuplicateKey()
		if _, ok := existingByKey[key]; !ok {
			existingByKey[key] = app
		}
	}

	members := make(map[int][]int)
	for i := range rows {
		if keyByRow[i] == "" {
			continue
		}
		root := uf.find(i)
		members[root] = append(members[root], i)
	}

	roots := make([]int, 0, len(members))
	for root := range members {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	var groups []models.DuplicateGroup
	for _, root := range roots {
		rowIdxs := members[root]
		sort.Ints(rowIdxs)

		key := keyByRow[rowIdxs[0]]
		existingMatch := existingByKey[key]

		if existingMatch == nil && len(rowIdxs) < 2 {
			continue
		}

		group := models.DuplicateGroup{
			MemberRowIndices:    rowIdxs,
			SuggestedResolution: models.ResolutionImportAsNew,
		}
		company, position := splitKey(key)
		if existingMatch != nil {
			group.ExistingID = existingMatch.ID
			group.SuggestedResolution = models.ResolutionSkip
			group.MatchReason = fmt.Sprintf(
				"company and position match existing application %q / %q", company, position)
		} else {
			group.MatchReason = fmt.Sprintf(
				"company and position match within import: %q / %q", company, position)
		}
		groups = append(groups, group)
	}
	return groups
}

func splitKey(key string) (company, position string) {
	parts := strings.SplitN(key, "\x00", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return key, ""
}
