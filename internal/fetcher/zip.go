package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractZIP extracts all files from a ZIP archive to the destination directory.
// Returns the list of extracted file paths.
func ExtractZIP(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var extracted []string
	for _, f := range r.File {
		path, err := extractZIPEntry(f, destDir)
		if err != nil {
			return extracted, err
		}
		if path != "" {
			extracted = append(extracted, path)
		}
	}

	return extracted, nil
}

// ExtractShapefile extracts a named .shp entry and its sidecar files (.dbf,
// .shx, .prj, .cpg) from a ZIP archive. Shapefile readers need the sidecars
// next to the .shp, so all entries sharing its stem are extracted together.
// Returns the path to the extracted .shp file.
func ExtractShapefile(zipPath, shpName, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	stem := strings.TrimSuffix(shpName, filepath.Ext(shpName))

	var shpPath string
	for _, f := range r.File {
		base := filepath.Base(f.Name)
		if strings.TrimSuffix(base, filepath.Ext(base)) != stem {
			continue
		}
		// Archives nest entries under directories; flatten to destDir.
		path, err := extractZIPEntryFlat(f, destDir)
		if err != nil {
			return "", err
		}
		if strings.EqualFold(filepath.Ext(base), ".shp") {
			shpPath = path
		}
	}

	if shpPath == "" {
		return "", eris.Errorf("zip: shapefile %q not found in archive", shpName)
	}

	return shpPath, nil
}

// extractZIPEntry extracts a single zip.File to the destination directory,
// preserving the entry's directory structure.
// Returns the extracted file path, or empty string for directories.
func extractZIPEntry(f *zip.File, destDir string) (string, error) {
	// Sanitize against zip slip
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("zip: illegal path %q (zip slip attempt)", f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return "", eris.Wrap(err, "zip: create directory")
		}
		return "", nil
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "zip: create parent directory")
	}

	return writeZIPEntry(f, destPath)
}

// extractZIPEntryFlat extracts a single zip.File directly into destDir,
// dropping any directory components of the entry name.
func extractZIPEntryFlat(f *zip.File, destDir string) (string, error) {
	if f.FileInfo().IsDir() {
		return "", nil
	}
	destPath := filepath.Join(destDir, filepath.Base(f.Name))
	return writeZIPEntry(f, destPath)
}

func writeZIPEntry(f *zip.File, destPath string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return "", eris.Wrap(err, "zip: write file")
	}

	return destPath, nil
}
