package document

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const workInProgressFileSuffix = ".wip"

// WriteTo re-indents the whole tree and serializes it.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	d.tree.Indent(d.indent)
	return d.tree.WriteTo(w)
}

func (d *Document) String() string {
	d.tree.Indent(d.indent)
	text, err := d.tree.WriteToString()
	if err != nil {
		return fmt.Sprintf("<unprintable document: %s>", err)
	}
	return text
}

// SaveToLocalFile writes the document to a work-in-progress file first and renames it into place,
// so either the complete document or nothing ends up at the given path.
func (d *Document) SaveToLocalFile(path string, overwrite bool) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("saving document failed: %w", err)
		}
	}()

	if !overwrite {
		if _, statErr := os.Lstat(path); statErr == nil {
			return fmt.Errorf("output file exists already (%s)", path)
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return statErr
		}
	}

	tempPath := path + workInProgressFileSuffix
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil { //plausible failure
		return
	}
	if _, err = d.WriteTo(file); err != nil {
		file.Close()
		os.Remove(tempPath)
		return
	}
	if err = file.Close(); err != nil {
		os.Remove(tempPath)
		return
	}

	if err = os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replacing %s with working copy %s failed: %w", path, tempPath, err)
	}
	return nil
}
