package artifactloader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"
)

// FileSource reads artifacts from a Hardhat artifacts tree, where
// contracts/Foo.sol compiles to <dir>/Foo.sol/Foo.json.
type FileSource struct {
	dir    string
	logger port.Logger
}

var _ port.ArtifactSource = (*FileSource)(nil)

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir string, logger port.Logger) *FileSource {
	return &FileSource{dir: dir, logger: logger}
}

// GetArtifact loads the artifact for contractName. When the contract does not
// live in a file of the same name, the tree is searched for it.
func (s *FileSource) GetArtifact(ctx context.Context, contractName string) (entity.ContractArtifact, error) {
	if err := validateName(contractName); err != nil {
		return entity.ContractArtifact{}, err
	}

	path := filepath.Join(s.dir, contractName+".sol", contractName+".json")
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return entity.ContractArtifact{}, fmt.Errorf("%w: %v", entity.ErrArtifact, err)
		}
		path, err = s.search(ctx, contractName)
		if err != nil {
			return entity.ContractArtifact{}, err
		}
	}

	s.logger.Debug("Loading contract artifact", "contract", contractName, "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.ContractArtifact{}, fmt.Errorf("%w: failed to read %s: %v", entity.ErrArtifact, path, err)
	}
	return decodeArtifact(contractName, data)
}

func (s *FileSource) search(ctx context.Context, contractName string) (string, error) {
	target := contractName + ".json"
	var matches []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// Skip build-info and other non-source directories.
		if d.IsDir() && path != s.dir && strings.HasPrefix(d.Name(), "build-info") {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == target {
			matches = append(matches, path)
		}
		return nil
	})
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: artifacts directory %s does not exist (compile the contracts first)", entity.ErrArtifact, s.dir)
	case err != nil:
		return "", fmt.Errorf("%w: searching %s: %v", entity.ErrArtifact, s.dir, err)
	case len(matches) == 0:
		return "", fmt.Errorf("%w: no artifact for %s under %s", entity.ErrArtifact, contractName, s.dir)
	case len(matches) > 1:
		return "", fmt.Errorf("%w: %s is ambiguous, found %s", entity.ErrArtifact, contractName, strings.Join(matches, ", "))
	}
	return matches[0], nil
}
