package pipeline

import "github.com/couchcryptid/flood-alert-dashboard/internal/domain"

// dropNullGeometry removes features whose geometry is null in the file.
// They cannot be normalized and fall under the drop-null policy.
func dropNullGeometry(features []domain.RawFeature) ([]domain.RawFeature, int) {
	kept := make([]domain.RawFeature, 0, len(features))
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		kept = append(kept, f)
	}
	return kept, len(features) - len(kept)
}
