package models

// WSMessage is the envelope pushed to connected clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ProgressUpdatedEvent tells the client its cached summary is stale and
// carries the fresh one so no extra round trip is needed.
type ProgressUpdatedEvent struct {
	OverallPercent int `json:"overallPercent"`
	TotalTimeSpent int `json:"totalTimeSpent"`
	CurrentStreak  int `json:"currentStreak"`
}
