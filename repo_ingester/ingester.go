package repo_ingester

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/morler/oxidize/logging"
	"github.com/morler/oxidize/repo_ingester/models"
	"github.com/morler/oxidize/utils"
)

const maxFileSize = 100 * 1024 // files over 100 KB are skipped

// Ingester collects the Python files of a local repository.
type Ingester struct {
	logger       *logging.Logger
	cacheManager *CacheManager
}

// NewIngester creates an ingester. Cache initialization failure degrades to
// uncached operation.
func NewIngester(logger *logging.Logger, enableCache bool) *Ingester {
	var cacheManager *CacheManager
	if enableCache {
		var err error
		cacheManager, err = NewCacheManager("")
		if err != nil {
			logger.Warnf("Failed to initialize cache manager: %v", err)
			cacheManager = nil
		}
	}

	return &Ingester{
		logger:       logger,
		cacheManager: cacheManager,
	}
}

// CacheManager exposes the cache for the reset-cache command; nil when
// caching is disabled.
func (ingester *Ingester) CacheManager() *CacheManager {
	return ingester.cacheManager
}

// IngestPythonRepo walks a local repository and returns its Python files,
// skipping test and documentation folders, default-ignored paths, gitignored
// paths, and oversized files. Unreadable files are logged and skipped.
func (ingester *Ingester) IngestPythonRepo(repoPath string) ([]models.PythonFile, error) {
	rootDir, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", repoPath, err)
	}

	if _, err := os.Stat(rootDir); err != nil {
		return nil, fmt.Errorf("path does not exist: %s", rootDir)
	}

	gitIgnore := utils.CompileGitignore(rootDir)

	var pythonFiles []models.PythonFile

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relativePath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		relativePath = strings.ReplaceAll(relativePath, "\\", "/")

		if relativePath == "." {
			return nil
		}

		if utils.IsDefaultIgnored(relativePath) || utils.IsSkippedFolder(relativePath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !strings.HasSuffix(relativePath, ".py") {
			return nil
		}

		fileInfo, err := os.Stat(path)
		if err != nil {
			ingester.logger.Warnf("Failed to stat %s: %v", relativePath, err)
			return nil
		}
		if fileInfo.Size() > maxFileSize {
			ingester.logger.Debugf("Skipping oversized file: %s", relativePath)
			return nil
		}

		if gitIgnore != nil && gitIgnore.MatchesPath(relativePath) {
			return nil
		}

		content, err := ingester.readFile(path)
		if err != nil {
			ingester.logger.Warnf("Failed to read %s: %v", relativePath, err)
			return nil
		}

		outline := ingester.outlineFile(path, content)

		pythonFiles = append(pythonFiles, models.PythonFile{
			RelativePath: relativePath,
			Content:      string(content),
			Outline:      strings.Join(outline, "\n"),
		})
		ingester.logger.Debugf("Ingested: %s", relativePath)

		return nil
	})

	if err != nil {
		return nil, err
	}

	ingester.logger.Infof("Found %d Python files", len(pythonFiles))
	return pythonFiles, nil
}

func (ingester *Ingester) readFile(path string) ([]byte, error) {
	if ingester.cacheManager != nil {
		if cached, found := ingester.cacheManager.GetFileContentCache(path); found {
			return cached, nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if ingester.cacheManager != nil {
		ingester.cacheManager.SetFileContentCache(path, content)
	}

	return content, nil
}

func (ingester *Ingester) outlineFile(path string, content []byte) []string {
	if ingester.cacheManager != nil {
		if cached, found := ingester.cacheManager.GetOutlineCache(path); found {
			return cached
		}
	}

	outline := OutlineFile(content)

	if ingester.cacheManager != nil {
		ingester.cacheManager.SetOutlineCache(path, outline)
	}

	return outline
}
