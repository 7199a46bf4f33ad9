package domain

type ChannelID string

type MessageID string

// MessageIndex is the persisted reconciliation record: the live message posted for each stack.
type MessageIndex map[StackID]MessageID

func (m MessageIndex) Clone() MessageIndex {
	cloned := make(MessageIndex, len(m))
	for stackID, messageID := range m {
		cloned[stackID] = messageID
	}

	return cloned
}
