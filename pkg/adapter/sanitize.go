package adapter

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// SanitizeHeader rewrites the CSV at src into a temporary file with every `.`
// in the header row replaced by `_`, leaving the data rows untouched. Kaggle
// exports tend to carry dotted column names that BigQuery rejects. Returns the
// path of the sanitized copy.
func SanitizeHeader(fs afero.Fs, src string) (string, error) {
	in, err := fs.Open(src)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open input file %s", src)
	}
	defer in.Close()

	out, err := afero.TempFile(fs, "", "*_clean.csv")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temporary file")
	}
	defer out.Close()

	reader := csv.NewReader(in)
	writer := csv.NewWriter(out)

	header, err := reader.Read()
	if err != nil {
		return "", errors.Wrap(ErrInputFormat, err.Error())
	}

	cleaned := make([]string, len(header))
	for i, col := range header {
		cleaned[i] = strings.ReplaceAll(col, ".", "_")
	}

	if err := writer.Write(cleaned); err != nil {
		return "", errors.Wrap(err, "failed to write sanitized header")
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrapf(err, "failed to read row from %s", src)
		}

		if err := writer.Write(row); err != nil {
			return "", errors.Wrap(err, "failed to write row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", errors.Wrap(err, "failed to flush sanitized CSV")
	}

	return out.Name(), nil
}
