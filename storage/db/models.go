package db

type Tab struct {
	ID         string
	CreatedAt  int64
	LastSeenAt int64
}

type TabValue struct {
	TabID     string
	Key       string
	Value     string
	UpdatedAt int64
}
