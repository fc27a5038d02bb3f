package journal

import (
	"fmt"
)

// ReplayFunc is called for each mutation of a committed transaction
type ReplayFunc func(op Op, key, value []byte) error

// Replay reads the journal at path and applies every committed transaction
// in log order. A missing file is an empty journal. Reading stops at the
// first torn or corrupted entry; transactions that were not committed before
// that point are skipped.
func Replay(path string, apply ReplayFunc) (committed int, err error) {
	pending := make(map[uint64][]*Entry)
	err = each(path, func(entry *Entry) error {
		if entry.Op != OpCommit {
			pending[entry.TxnID] = append(pending[entry.TxnID], entry)
			return nil
		}
		for _, e := range pending[entry.TxnID] {
			if err := apply(e.Op, e.Key, e.Value); err != nil {
				return fmt.Errorf("replay failed at LSN %d: %w", e.LSN, err)
			}
		}
		delete(pending, entry.TxnID)
		committed++
		return nil
	})
	return committed, err
}
