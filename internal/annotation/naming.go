package annotation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Heatmaps are named <predicted>_<truth>_<base filename>, e.g.
// neg_pos_pic_00046.png, where <truth> is the class directory of the image in
// the test dataset and the base filename itself contains one underscore.

// OriginalPath returns the path of the test image a heatmap was generated
// from: <origin>/<truth>/<base filename>.
func OriginalPath(heatmapName, origin string) (string, error) {
	parts := strings.Split(filepath.Base(heatmapName), "_")
	if len(parts) < 3 {
		return "", fmt.Errorf("%w: heatmap name %q does not end in <truth>_<name>_<id>",
			ErrUnresolvedReference, heatmapName)
	}

	n := len(parts)
	category := parts[n-3]
	filename := parts[n-2] + "_" + parts[n-1]

	return filepath.Join(origin, category, filename), nil
}

// RecordKey returns the dataset-relative filename of an original image, which
// is how classification records refer to it.
func RecordKey(origFile string) string {
	return filepath.Join(filepath.Base(filepath.Dir(origFile)), filepath.Base(origFile))
}
