package viewmodel

// TopicCard is one row of the topic list on the landing page.
type TopicCard struct {
	ID           string
	Title        string
	Creator      string
	ForCount     int
	AgainstCount int
	State        string
	CreatedAt    string
}

// HomePage holds data for the landing page template.
type HomePage struct {
	Title  string
	Topics []TopicCard
}
