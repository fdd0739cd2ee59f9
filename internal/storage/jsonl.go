package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"rebalanceScope/internal/model"
)

// JsonlStorage appends parsed transactions to one JSONL file and decode
// failures to another. An empty errors path discards failures.
type JsonlStorage struct {
	path       string
	errorsPath string
	mu         sync.Mutex
}

func NewJsonlStorage(path, errorsPath string) *JsonlStorage {
	return &JsonlStorage{path: path, errorsPath: errorsPath}
}

// PutTransactions appends transactions as JSON lines.
func (s *JsonlStorage) PutTransactions(txs []*model.ParsedTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	records := make([]interface{}, 0, len(txs))
	for _, tx := range txs {
		if tx != nil {
			records = append(records, tx)
		}
	}
	return s.appendLines(s.path, records)
}

// PutDecodeErrors appends decode failures as JSON lines.
func (s *JsonlStorage) PutDecodeErrors(errs []model.DecodeError) error {
	if len(errs) == 0 || s.errorsPath == "" {
		return nil
	}
	records := make([]interface{}, len(errs))
	for i := range errs {
		records[i] = errs[i]
	}
	return s.appendLines(s.errorsPath, records)
}

func (s *JsonlStorage) appendLines(path string, records []interface{}) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// ReadTransactions loads parsed transactions from a JSONL file. A path of
// "-" reads standard input.
func ReadTransactions(path string) ([]*model.ParsedTransaction, error) {
	if path == "-" {
		return DecodeTransactions(os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return DecodeTransactions(file)
}

// DecodeTransactions reads one ParsedTransaction per non-empty line.
func DecodeTransactions(r io.Reader) ([]*model.ParsedTransaction, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var out []*model.ParsedTransaction
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var tx model.ParsedTransaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, &tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return out, nil
}
