package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Compact rewrites the journal at path keeping only committed transactions,
// dropping abandoned entries and any torn tail. The journal must not be open.
// The rewrite goes to a temporary file that replaces path on success.
func Compact(path string) (dropped int, err error) {
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}
	committed := make(map[uint64]bool)
	total := 0
	if err := each(path, func(e *Entry) error {
		total++
		if e.Op == OpCommit {
			committed[e.TxnID] = true
		}
		return nil
	}); err != nil {
		return 0, err
	}

	tmp := path + ".compact"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(out)
	kept := 0
	if err := each(path, func(e *Entry) error {
		if !committed[e.TxnID] {
			return nil
		}
		kept++
		_, err := w.Write(e.Encode())
		return err
	}); err != nil {
		return 0, err
	}
	if err := w.Flush(); err != nil {
		return 0, err
	}
	if err := out.Sync(); err != nil {
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, fmt.Errorf("journal: replace %s: %w", path, err)
	}
	return total - kept, nil
}

// each calls fn for every valid entry, stopping at a torn or corrupted one
func each(path string, fn func(*Entry) error) error {
	fd, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer fd.Close()

	r := bufio.NewReader(fd)
	for {
		entry, _, err := readEntry(r)
		if err == io.EOF || errors.Is(err, ErrTruncated) || errors.Is(err, ErrCorrupted) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
}
