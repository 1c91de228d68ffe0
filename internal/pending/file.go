package pending

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/perfura/storefront/internal/models"
	"github.com/rs/zerolog"
)

// FileStore keeps one JSON document per line. Appends are synced to disk
// before returning. Lines that do not decode are skipped when listing.
type FileStore struct {
	path   string
	logger zerolog.Logger
	mu     sync.Mutex
}

func NewFileStore(path string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create pending order directory: %w", err)
	}
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "pending").Str("path", path).Logger(),
	}, nil
}

func (s *FileStore) Append(_ context.Context, order models.PendingOrder) error {
	line, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode pending order: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open pending orders: %w", err)
	}

	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("append pending order: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync pending orders: %w", err)
	}
	return f.Close()
}

func (s *FileStore) List(_ context.Context) ([]models.PendingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []models.PendingOrder{}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return orders, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open pending orders: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var order models.PendingOrder
		if err := json.Unmarshal(scanner.Bytes(), &order); err != nil {
			s.logger.Warn().Err(err).Int("line", lineNo).Msg("skipping undecodable pending order")
			continue
		}
		orders = append(orders, order)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pending orders: %w", err)
	}

	return orders, nil
}
