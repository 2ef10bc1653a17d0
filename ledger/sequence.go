package ledger

import "fmt"

// SequenceError reports a broken snapshot chain in a holder's history.
type SequenceError struct {
	HolderID string
	Index    int
	Want     int64
	Got      int64
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("broken snapshot chain for holder %s at entry %d: want level %d, got %d",
		e.HolderID, e.Index, e.Want, e.Got)
}

// CheckSequence verifies the snapshot invariant over one holder's history in
// insertion order: NewLevel[n] == NewLevel[n-1] + Change[n], with
// NewLevel[0] == Change[0]. Capital adjustments participate with Change 0,
// so the chain covers every entry.
func CheckSequence(entries []Entry) error {
	var level int64
	for i, e := range entries {
		want := level + e.Change
		if e.NewLevel != want {
			return &SequenceError{HolderID: e.HolderID, Index: i, Want: want, Got: e.NewLevel}
		}
		level = e.NewLevel
	}
	return nil
}
