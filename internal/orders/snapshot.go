package orders

import "encoding/json"

// SnapshotLine is one line of the compact cart captured at payment-intent
// creation and replayed by the webhook to rebuild order lines. Field names
// stay short on purpose: the snapshot rides in provider metadata.
type SnapshotLine struct {
	ID    string   `json:"id"`
	Qty   int      `json:"qty"`
	Sides []string `json:"s,omitempty"`
	Notes string   `json:"n,omitempty"`
}

func EncodeSnapshot(lines []SnapshotLine) (string, error) {
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeSnapshot is tolerant: a missing or unparseable snapshot yields nil,
// which the recorder treats as "leave existing lines alone".
func DecodeSnapshot(s string) []SnapshotLine {
	if s == "" {
		return nil
	}
	var lines []SnapshotLine
	if err := json.Unmarshal([]byte(s), &lines); err != nil {
		return nil
	}
	return lines
}
