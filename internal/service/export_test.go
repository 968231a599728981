package service

// Len returns the number of armed keys.
func (m *MemoryCooldowns) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
