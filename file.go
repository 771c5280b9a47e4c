package beastwords

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

func (c *converter) WriteTo(w io.Writer) (int64, error) {
	return c.doc.WriteTo(w)
}

func (c *converter) SaveToFile(path string, overwrite bool) error {
	if c.source != "" && sameFile(c.source, path) {
		return fmt.Errorf("document save error: refusing to replace the input document (%s)", displayablePath(path))
	}
	if err := c.doc.SaveToLocalFile(path, overwrite); err != nil {
		return fmt.Errorf("document save error: %w", err)
	}
	c.log.Debug("document saved", zap.String("path", displayablePath(path)))
	return nil
}
