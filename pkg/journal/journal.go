package journal

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Journal is a single-file append-only log of graph mutations grouped into
// transactions.
type Journal struct {
	// Path is the journal file (e.g. "/data/sbom.journal")
	Path string

	mu     sync.Mutex
	fd     *os.File
	lsn    uint64
	txn    uint64
	dirty  bool // entries appended since the last commit
	closed bool
}

// Open opens or creates the journal file and positions the sequence
// counters after the last valid entry.
func (j *Journal) Open() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.Path), 0o755); err != nil {
		return err
	}

	lastLSN, lastTxn, validSize, err := scan(j.Path)
	if err != nil {
		return err
	}

	fd, err := os.OpenFile(j.Path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	// Drop a torn tail left by a crash mid-write so new entries start on
	// an entry boundary.
	if err := fd.Truncate(validSize); err != nil {
		fd.Close()
		return err
	}
	if _, err := fd.Seek(validSize, io.SeekStart); err != nil {
		fd.Close()
		return err
	}

	j.fd = fd
	j.lsn = lastLSN
	j.txn = lastTxn + 1
	j.dirty = false
	j.closed = false
	return nil
}

// Append records one mutation in the current transaction.
func (j *Journal) Append(op Op, key, value []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.fd == nil {
		return ErrClosed
	}
	j.lsn++
	entry := Entry{LSN: j.lsn, TxnID: j.txn, Op: op, Key: key, Value: value, Timestamp: time.Now()}
	if _, err := j.fd.Write(entry.Encode()); err != nil {
		return err
	}
	j.dirty = true
	return nil
}

// Commit writes the commit marker for the current transaction, fsyncs and
// starts the next transaction. Committing an empty transaction is a no-op.
func (j *Journal) Commit() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.fd == nil {
		return ErrClosed
	}
	if !j.dirty {
		return nil
	}
	j.lsn++
	entry := Entry{LSN: j.lsn, TxnID: j.txn, Op: OpCommit, Timestamp: time.Now()}
	if _, err := j.fd.Write(entry.Encode()); err != nil {
		return err
	}
	if err := j.fd.Sync(); err != nil {
		return err
	}
	j.txn++
	j.dirty = false
	return nil
}

// Abandon starts a new transaction without committing the current one.
// Entries already written stay in the file but are never replayed.
func (j *Journal) Abandon() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.dirty {
		j.txn++
		j.dirty = false
	}
}

// Close closes the journal. Uncommitted entries are left unreplayable.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.fd == nil {
		return nil
	}
	err := j.fd.Close()
	j.closed = true
	return err
}

// LSN returns the sequence number of the last written entry.
func (j *Journal) LSN() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lsn
}

// scan walks an existing journal and returns the last LSN and transaction id
// seen, plus the byte length of the valid prefix.
func scan(path string) (lastLSN, lastTxn uint64, size int64, err error) {
	fd, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, 0, 0, nil
	}
	if err != nil {
		return 0, 0, 0, err
	}
	defer fd.Close()

	r := bufio.NewReader(fd)
	for {
		entry, n, err := readEntry(r)
		if err != nil {
			if err == io.EOF || errors.Is(err, ErrTruncated) || errors.Is(err, ErrCorrupted) {
				return lastLSN, lastTxn, size, nil
			}
			return 0, 0, 0, err
		}
		size += int64(n)
		lastLSN = entry.LSN
		if entry.TxnID > lastTxn {
			lastTxn = entry.TxnID
		}
	}
}

// readEntry reads one entry and reports how many bytes it occupied.
func readEntry(r io.Reader) (*Entry, int, error) {
	header := make([]byte, HeaderSize)
	if n, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, n, ErrTruncated
		}
		return nil, n, err
	}

	data := make([]byte, HeaderSize+payloadLen(header))
	copy(data, header)
	if _, err := io.ReadFull(r, data[HeaderSize:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, 0, ErrTruncated
		}
		return nil, 0, err
	}

	entry, err := DecodeEntry(data)
	if err != nil {
		return nil, 0, err
	}
	return entry, len(data), nil
}
