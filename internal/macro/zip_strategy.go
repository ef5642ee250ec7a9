package macro

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ZipStrategy rewrites an xlsm archive entry by entry. Shared strings,
// worksheet and drawing parts get literal text substitution; every other
// entry, macro bytecode included, is copied unchanged.
type ZipStrategy struct {
	logger *zap.Logger
}

// NewZipStrategy creates the ZIP-level replacement strategy
func NewZipStrategy(logger *zap.Logger) *ZipStrategy {
	return &ZipStrategy{logger: logger}
}

// Name implements Strategy
func (s *ZipStrategy) Name() string { return "zip" }

// isTextPart reports whether an archive entry is safe for text substitution.
func isTextPart(name string) bool {
	if name == "xl/sharedStrings.xml" {
		return true
	}
	if strings.HasPrefix(name, "xl/worksheets/") && strings.HasSuffix(name, ".xml") {
		return true
	}
	if strings.HasPrefix(name, "xl/drawings/") && strings.HasSuffix(name, ".xml") {
		return true
	}
	return false
}

// Apply copies src to dst, substituting replacement keys inside the
// text-bearing parts and counting occurrences per file for diagnostics.
func (s *ZipStrategy) Apply(src, dst string, repl map[string]string) error {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open source archive: %w", err)
	}
	defer reader.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create output archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, entry := range reader.File {
		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("failed to open entry %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("failed to read entry %s: %w", entry.Name, err)
		}

		if isTextPart(entry.Name) && len(repl) > 0 {
			// Byte-to-string conversion tolerates invalid UTF-8; unmatched
			// bytes pass through unchanged.
			content := string(data)
			count := 0
			for old, new := range repl {
				if old == "" {
					continue
				}
				if n := strings.Count(content, old); n > 0 {
					content = strings.ReplaceAll(content, old, new)
					count += n
				}
			}
			if count > 0 {
				s.logger.Debug("Replaced text in archive part",
					zap.String("part", entry.Name), zap.Int("occurrences", count))
			}
			data = []byte(content)
		}

		fw, err := zw.Create(entry.Name)
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", entry.Name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", entry.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize output archive: %w", err)
	}
	return nil
}
