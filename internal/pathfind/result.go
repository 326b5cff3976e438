package pathfind

import (
	"github.com/persistorai/pathfinder/internal/models"
)

// assemble resolves ordered keys to records. A key without a cached record
// means the chain is inconsistent and no path is reported.
func assemble(keys []models.NodeKey, records map[models.NodeKey]models.Document) (*models.Path, bool) {
	nodes := make([]models.Document, 0, len(keys))

	for _, k := range keys {
		doc, ok := records[k]
		if !ok {
			return nil, false
		}

		nodes = append(nodes, doc)
	}

	return models.NewPath(nodes), true
}

func notFound(stats models.SearchStats) *models.Path {
	p := models.NotFound()
	p.Stats = stats

	return p
}
