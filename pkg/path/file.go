package path

import (
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

func ReadYaml(fs afero.Fs, path string, out interface{}) error {
	buf, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.Wrapf(err, "failed to read file %s", path)
	}

	return ConvertYamlToObject(buf, out)
}

// WriteYamlAtomic writes the marshalled content to a temporary file next to the
// destination and renames it into place, so a failed write never leaves a
// half-written config behind.
func WriteYamlAtomic(fs afero.Fs, path string, content interface{}) error {
	buf, err := yaml.Marshal(content)
	if err != nil {
		return errors.Wrap(err, "failed to marshal object to yaml")
	}

	tmpPath := path + ".tmp"
	if err := afero.WriteFile(fs, tmpPath, buf, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write YAML file to %s", tmpPath)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		_ = fs.Remove(tmpPath)
		return errors.Wrapf(err, "failed to move %s into place", tmpPath)
	}

	return nil
}

func ConvertYamlToObject(buf []byte, out interface{}) error {
	err := yaml.Unmarshal(buf, out)
	if err != nil {
		return err
	}

	validate := validator.New()

	err = validate.Struct(out)
	if err != nil {
		return err
	}

	return nil
}

func FileExists(fs afero.Fs, path string) bool {
	res, err := afero.Exists(fs, path)
	return err == nil && res
}

// CopyFile duplicates src to dst with the same content, used for config backups.
func CopyFile(fs afero.Fs, src, dst string) error {
	buf, err := afero.ReadFile(fs, src)
	if err != nil {
		return errors.Wrapf(err, "failed to read file %s", src)
	}

	if err := fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", dst)
	}

	return afero.WriteFile(fs, dst, buf, 0o644)
}
