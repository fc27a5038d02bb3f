package journal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
)

// Op is the kind of graph mutation an entry records
type Op byte

const (
	// OpCreate creates an element; Key addresses the element, Value holds its type
	OpCreate Op = 1

	// OpSet overwrites a property value
	OpSet Op = 2

	// OpAppend appends to a collection-valued property
	OpAppend Op = 3

	// OpCommit marks the end of a transaction; entries of a transaction
	// without a commit marker are never replayed
	OpCommit Op = 4
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpSet:
		return "SET"
	case OpAppend:
		return "APPEND"
	case OpCommit:
		return "COMMIT"
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}

const (
	// HeaderSize is the fixed size of the entry header
	// Layout: LSN(8) + TxnID(8) + Op(1) + Reserved(7) + KeyLen(4) + ValLen(4) + Timestamp(8)
	HeaderSize = 40
)

// Entry is a single journal record
type Entry struct {
	LSN       uint64
	TxnID     uint64
	Op        Op
	Key       []byte
	Value     []byte
	Timestamp time.Time
}

// Encode serializes the entry followed by a CRC32 of everything before it
// Format: [Header(40)] [Key] [Value] [CRC32(4)]
func (e *Entry) Encode() []byte {
	keyLen := len(e.Key)
	valLen := len(e.Value)
	buf := make([]byte, HeaderSize+keyLen+valLen+4)

	binary.LittleEndian.PutUint64(buf[0:8], e.LSN)
	binary.LittleEndian.PutUint64(buf[8:16], e.TxnID)
	buf[16] = byte(e.Op)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(keyLen))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(valLen))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(e.Timestamp.Unix()))

	offset := HeaderSize
	copy(buf[offset:], e.Key)
	offset += keyLen
	copy(buf[offset:], e.Value)
	offset += valLen

	crc := crc32.ChecksumIEEE(buf[:offset])
	binary.LittleEndian.PutUint32(buf[offset:], crc)
	return buf
}

// payloadLen returns the number of bytes following the header, CRC included
func payloadLen(header []byte) int {
	keyLen := binary.LittleEndian.Uint32(header[24:28])
	valLen := binary.LittleEndian.Uint32(header[28:32])
	return int(keyLen) + int(valLen) + 4
}

// DecodeEntry deserializes and verifies one encoded entry
func DecodeEntry(data []byte) (*Entry, error) {
	if len(data) < HeaderSize+4 {
		return nil, ErrTruncated
	}
	if len(data) < HeaderSize+payloadLen(data) {
		return nil, ErrTruncated
	}

	n := len(data)
	if binary.LittleEndian.Uint32(data[n-4:]) != crc32.ChecksumIEEE(data[:n-4]) {
		return nil, ErrCorrupted
	}

	entry := &Entry{
		LSN:       binary.LittleEndian.Uint64(data[0:8]),
		TxnID:     binary.LittleEndian.Uint64(data[8:16]),
		Op:        Op(data[16]),
		Timestamp: time.Unix(int64(binary.LittleEndian.Uint64(data[32:40])), 0),
	}
	if entry.Op < OpCreate || entry.Op > OpCommit {
		return nil, fmt.Errorf("%w: %d at LSN %d", ErrUnknownOp, data[16], entry.LSN)
	}

	keyLen := int(binary.LittleEndian.Uint32(data[24:28]))
	valLen := int(binary.LittleEndian.Uint32(data[28:32]))
	offset := HeaderSize
	if keyLen > 0 {
		entry.Key = append([]byte(nil), data[offset:offset+keyLen]...)
		offset += keyLen
	}
	if valLen > 0 {
		entry.Value = append([]byte(nil), data[offset:offset+valLen]...)
	}
	return entry, nil
}

// String returns a human-readable representation of the entry
func (e *Entry) String() string {
	return fmt.Sprintf("journal[LSN=%d Txn=%d Op=%s KeyLen=%d ValLen=%d]",
		e.LSN, e.TxnID, e.Op, len(e.Key), len(e.Value))
}
