package importer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"paperflow-hq/paperflow/pkg/policy"
)

// MaxFileSize caps a single policy file. Policy documents are small; a file
// past this size is misconfiguration, not policy.
const MaxFileSize = 1 << 20

// LoadError describes a failure loading one policy file.
type LoadError struct {
	FilePath string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %s: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("load %s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// LoadFile parses one YAML file into policy documents. Files may hold
// multiple documents separated by ---.
func LoadFile(path string) ([]*policy.Policy, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "stat failed", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}
	if info.Size() > MaxFileSize {
		return nil, &LoadError{FilePath: path, Message: fmt.Sprintf("file size %d exceeds maximum %d", info.Size(), MaxFileSize)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "open failed", Cause: err}
	}
	defer f.Close()

	var policies []*policy.Policy
	dec := yaml.NewDecoder(f)
	for {
		var p policy.Policy
		if err := dec.Decode(&p); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{FilePath: path, Message: "yaml parse failed", Cause: err}
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return nil, &LoadError{FilePath: path, Message: "invalid policy document", Cause: err}
		}
		policies = append(policies, &p)
	}
	return policies, nil
}

// LoadDir loads every .yaml/.yml file under dir, skipping hidden entries.
// Files are visited in lexical order so later files win on duplicate ids.
func LoadDir(dir string) ([]*policy.Policy, error) {
	var policies []*policy.Policy
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
		default:
			return nil
		}
		loaded, err := LoadFile(path)
		if err != nil {
			return err
		}
		policies = append(policies, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return policies, nil
}
