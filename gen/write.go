package gen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fzft/go-redis-commands/commands"
	"github.com/fzft/go-redis-commands/log"
)

// Write encodes table with sorted names and two space indentation, so that
// regenerated tables diff cleanly.
func Write(w io.Writer, table map[string]commands.Command) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteFile replaces path with the encoded table. The file is written next to
// path first and renamed, readers never see a partial table.
func WriteFile(path string, table map[string]commands.Command) error {
	var buf bytes.Buffer
	if err := Write(&buf, table); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Logger.Info("wrote command table", zap.String("path", path), zap.Int("commands", len(table)))
	return nil
}
