package link

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the two wire messages.
type Kind uint8

const (
	KindHeartbeat Kind = iota
	KindAdvance
)

func (k Kind) String() string {
	switch k {
	case KindHeartbeat:
		return "HB"
	case KindAdvance:
		return "ADV"
	}
	return "?"
}

// Message is one decoded sync frame. Role is the sender's role number
// (0 = leader), Step its current position in the category sequence, TS the
// emission time in unix seconds.
type Message struct {
	Kind Kind
	Role int
	Step int
	TS   int64
}

// Marshal renders the ASCII wire frame, e.g. "ADV role=0 step=42 ts=1700000000".
func (m Message) Marshal() []byte {
	return []byte(fmt.Sprintf("%s role=%d step=%d ts=%d", m.Kind, m.Role, m.Step, m.TS))
}

// ParseMessage decodes a frame. Unknown keys and extra whitespace are
// tolerated; unknown tags and frames missing role or step are rejected.
// Callers treat any error as "not ours" and drop the frame.
func ParseMessage(b []byte) (Message, error) {
	fields := strings.Fields(string(b))
	if len(fields) == 0 {
		return Message{}, fmt.Errorf("link: empty frame")
	}

	var m Message
	switch fields[0] {
	case "HB":
		m.Kind = KindHeartbeat
	case "ADV":
		m.Kind = KindAdvance
	default:
		return Message{}, fmt.Errorf("link: unknown tag %q", fields[0])
	}

	haveRole, haveStep := false, false
	for _, f := range fields[1:] {
		key, val, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		switch key {
		case "role":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Message{}, fmt.Errorf("link: bad role %q", val)
			}
			m.Role = n
			haveRole = true
		case "step":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Message{}, fmt.Errorf("link: bad step %q", val)
			}
			m.Step = n
			haveStep = true
		case "ts":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return Message{}, fmt.Errorf("link: bad ts %q", val)
			}
			m.TS = n
		}
	}
	if !haveRole || !haveStep {
		return Message{}, fmt.Errorf("link: frame missing role or step")
	}
	return m, nil
}
