// Package record persists classification results as JSON files and keeps
// running session statistics.
package record

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zen-systems/taxnav/pkg/classify"
)

// Record captures one classification outcome for later review.
type Record struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Product   string          `json:"product"`
	Result    classify.Result `json:"result"`
}

// SessionStats summarizes a sequence of classifications.
type SessionStats struct {
	Total       int           `json:"total"`
	Successes   int           `json:"successes"`
	Failures    int           `json:"failures"`
	OracleCalls int           `json:"oracle_calls"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Writer writes classification records to disk, one file per result.
type Writer struct {
	dir string

	mu    sync.Mutex
	seq   int
	stats SessionStats
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("record directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the record directory path.
func (w *Writer) Dir() string {
	return w.dir
}

// Write persists one result and folds it into the session statistics. The
// returned path names the record file.
func (w *Writer) Write(product string, result classify.Result) (string, error) {
	w.mu.Lock()
	w.seq++
	seq := w.seq
	w.stats.Total++
	if result.Success {
		w.stats.Successes++
	} else {
		w.stats.Failures++
	}
	w.stats.OracleCalls += result.Calls
	w.stats.Elapsed += result.Elapsed
	w.mu.Unlock()

	rec := Record{
		ID:        recordID(product, seq),
		Timestamp: time.Now().UTC(),
		Product:   product,
		Result:    result,
	}

	path := filepath.Join(w.dir, rec.ID+".json")
	if err := writeJSON(path, rec); err != nil {
		return "", err
	}
	return path, nil
}

// Stats returns a snapshot of the session statistics.
func (w *Writer) Stats() SessionStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// WriteStats persists the session summary to session.json.
func (w *Writer) WriteStats() error {
	return writeJSON(filepath.Join(w.dir, "session.json"), w.Stats())
}

func recordID(product string, seq int) string {
	h := sha256.Sum256([]byte(product))
	return fmt.Sprintf("%04d-%s", seq, hex.EncodeToString(h[:])[:8])
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
