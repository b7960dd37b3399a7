package thread

// Models lists every persisted entity in migration order.
func Models() []interface{} {
	return []interface{}{
		&Thread{},
		&ThreadMessage{},
		&ThreadMessageSummary{},
	}
}
